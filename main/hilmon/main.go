package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/monitor"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/service/canbusd"
)

type MonCmd struct {
	ConfigFile       string  `name:"config" short:"c" placeholder:"<path>" help:"config file (HCL)"`
	Listen           string  `name:"listen" placeholder:"<host:port>" help:"UDP address of the virtual CAN bus"`
	TrainingSamples  int     `name:"training-samples" default:"-1" help:"feature vectors collected before fitting the baseline"`
	Contamination    float64 `name:"contamination" default:"-1" help:"expected fraction of outliers in training data"`
	RunFor           string  `name:"run-for" placeholder:"<duration>" help:"bound the monitoring phase, e.g. 5m"`
	AlertBroker      string  `name:"alert-broker" placeholder:"<url>" help:"MQTT broker for anomaly alerts, e.g. tcp://127.0.0.1:1883"`
	AlertTopic       string  `name:"alert-topic" help:"MQTT topic for anomaly alerts"`
	TrainingCSV      string  `name:"training-csv" default:"*" help:"training data export path, empty disables"`
	MonitoringCSV    string  `name:"monitoring-csv" default:"*" help:"monitoring log export path, empty disables"`
	LogFilename      string  `name:"log-filename" default:"-" help:"log file path, '-' for console"`
	LogLevel         string  `name:"log-level" default:"INFO" enum:"TRACE,DEBUG,INFO,WARN,ERROR" help:"log level"`
	LogMaxSize       int     `name:"log-max-size" default:"10" help:"maximum size of the log file in MB"`
	LogMaxBackups    int     `name:"log-max-backups" default:"2" help:"maximum number of old log files to retain"`
	LogMaxAge        int     `name:"log-max-age" default:"7" help:"maximum days to retain old log files"`
	Version          bool    `name:"version" default:"false" help:"show version"`
}

func main() {
	cmd := &MonCmd{}
	kong.Parse(cmd,
		kong.Name("hilmon"),
		kong.Description("passive behavioral anomaly monitor for the virtual CAN battery bus"),
		kong.HelpOptions{Compact: true, FlagsLast: true},
		kong.UsageOnError(),
	)
	if cmd.Version {
		fmt.Fprintf(os.Stdout, "hilmon %s\n", mods.VersionString())
		return
	}
	if err := run(cmd); err != nil {
		fmt.Fprintln(os.Stderr, "ERR", err.Error())
		os.Exit(1)
	}
}

func run(cmd *MonCmd) error {
	logging.Configure(&logging.Config{
		Console:            false,
		Filename:           cmd.LogFilename,
		Append:             true,
		MaxSize:            cmd.LogMaxSize,
		MaxBackups:         cmd.LogMaxBackups,
		MaxAge:             cmd.LogMaxAge,
		DefaultPrefixWidth: 12,
		DefaultLevel:       cmd.LogLevel,
	})
	log := logging.GetLog("hilmon")

	conf := monitor.DefaultConfig()
	if cmd.ConfigFile != "" {
		loaded, err := monitor.LoadConfig(cmd.ConfigFile)
		if err != nil {
			return fmt.Errorf("config %s: %w", cmd.ConfigFile, err)
		}
		conf = *loaded
	}
	// command line flags override the config file
	if cmd.Listen != "" {
		conf.Listen = cmd.Listen
	}
	if cmd.TrainingSamples >= 0 {
		conf.TrainingSamples = cmd.TrainingSamples
	}
	if cmd.Contamination >= 0 {
		conf.Contamination = cmd.Contamination
	}
	if cmd.RunFor != "" {
		conf.RunFor = cmd.RunFor
	}
	if cmd.TrainingCSV != "*" {
		conf.TrainingCSV = cmd.TrainingCSV
	}
	if cmd.MonitoringCSV != "*" {
		conf.MonitoringCSV = cmd.MonitoringCSV
	}
	if cmd.AlertBroker != "" {
		if conf.Alert == nil {
			conf.Alert = &monitor.AlertConfig{}
		}
		conf.Alert.Broker = cmd.AlertBroker
	}
	if cmd.AlertTopic != "" && conf.Alert != nil {
		conf.Alert.Topic = cmd.AlertTopic
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	lsnr, err := canbusd.New(canbusd.WithListenAddress(conf.Listen))
	if err != nil {
		return err
	}
	if err := lsnr.Start(); err != nil {
		return err
	}
	defer lsnr.Stop()

	opts := []monitor.SessionOption{monitor.WithConsole(os.Stdout)}
	if conf.Alert != nil && conf.Alert.Broker != "" {
		pub, err := monitor.NewAlertPublisher(conf.Alert)
		if err != nil {
			// the monitor is useful without alerts, keep going
			log.Warnf("alert publisher disabled: %s", err.Error())
		} else {
			defer pub.Close()
			opts = append(opts, monitor.WithAlertPublisher(pub))
		}
	}

	sess, err := monitor.NewSession(conf, lsnr, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("hilmon %s", mods.VersionString())
	return sess.Run(ctx)
}
