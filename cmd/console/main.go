// Package main is an interactive console for the protocol: it runs the
// simulated machine against stdin/stdout so the full command set can be
// exercised without a serial port.
package main

import (
	"bufio"
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/apollo2030/grblesp/internal/core"
	"github.com/apollo2030/grblesp/internal/model"
	"github.com/apollo2030/grblesp/internal/report"
	"github.com/apollo2030/grblesp/internal/util"
)

// stdoutSink writes protocol records to standard output.
type stdoutSink struct{}

func (stdoutSink) Write(text string) error {
	_, err := os.Stdout.WriteString(text)
	return err
}

func main() {
	cfgPath := flag.String("c", "", "optional configuration file")
	flag.Parse()
	util.SetupLogger("off")

	cfg := model.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := model.LoadConfig(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	broker := report.NewBroker()
	broker.Register(report.ClientSerial, stdoutSink{})
	reporter := report.NewReporter(broker, cfg.Report)
	machine := core.NewSimMachine(cfg)
	session := core.NewSession(report.ClientSerial, reporter, machine, cfg.Report.Echo)

	_ = reporter.WelcomeMessage(report.ClientSerial)
	if machine.State() == model.StateAlarm {
		_ = reporter.FeedbackMessage(model.MessageAlarmLock)
	}
	_ = session.RunStartupLines()

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if err := session.Execute(in.Text()); err != nil {
			log.Fatalf("write: %v", err)
		}
	}
}
