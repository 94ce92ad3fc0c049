package main

import (
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/cloudgridlab/cloudgrid/datarecording"
	"github.com/cloudgridlab/cloudgrid/monitoring"
	"github.com/cloudgridlab/cloudgrid/sim"
)

var (
	topologyPath string
	logLevel     string

	sqlitePath     string
	clickHouseHost string
	clickHousePort int
	clickHouseDB   string
	clickHouseUser string
	clickHousePass string

	monitorOn   bool
	monitorPort int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation described by a topology file",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := LoadTopologyConfig(topologyPath)
		if err != nil {
			return err
		}

		return runSimulation(cfg)
	},
}

func init() {
	runCmd.Flags().StringVar(&topologyPath, "topology", "topology.yaml",
		"Path to the YAML topology file")
	runCmd.Flags().StringVar(&logLevel, "log", "info",
		"Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&sqlitePath, "sqlite", "",
		"Record transfers into a SQLite database at this path")
	runCmd.Flags().StringVar(&clickHouseHost, "clickhouse-host", "",
		"Record transfers into a ClickHouse server at this host")
	runCmd.Flags().IntVar(&clickHousePort, "clickhouse-port", 9000,
		"ClickHouse native protocol port")
	runCmd.Flags().StringVar(&clickHouseDB, "clickhouse-db", "default",
		"ClickHouse database name")
	runCmd.Flags().StringVar(&clickHouseUser, "clickhouse-user", "default",
		"ClickHouse username")
	runCmd.Flags().StringVar(&clickHousePass, "clickhouse-pass", "",
		"ClickHouse password")

	runCmd.Flags().BoolVar(&monitorOn, "monitor", false,
		"Serve the monitoring API while the simulation runs")
	runCmd.Flags().IntVar(&monitorPort, "monitor-port", 0,
		"Port for the monitoring API, 0 picks a random one")

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cfg *TopologyConfig) error {
	t, err := cfg.build()
	if err != nil {
		return err
	}

	recorder, runLogger := setupRecording(t)

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		t.engine.AcceptHook(sim.NewEventLogger(
			log.New(logrus.StandardLogger().Writer(), "", 0)))
	}

	if monitorOn {
		setupMonitor(t)
	}

	logrus.Infof("Starting simulation with %d hosts", len(t.hosts))
	startTime := time.Now()

	for _, h := range t.hosts {
		h.KickStart(0)
	}

	if err := t.engine.Run(); err != nil {
		return err
	}
	t.engine.Finished()

	logrus.WithFields(logrus.Fields{
		"simulated_time": float64(t.engine.CurrentTime()),
		"wall_time":      time.Since(startTime).Seconds(),
		"total_traffic":  t.counter.Total(),
	}).Info("Simulation complete")

	for _, h := range t.hosts {
		for _, w := range h.Residents() {
			if t.model.Done(w.ID()) {
				logrus.Infof("workload %s finished at %f",
					w.ID(), float64(t.model.FinishTime(w.ID())))
			}
		}
	}

	if runLogger != nil {
		runLogger.AddProperty("Total Traffic",
			fmt.Sprintf("%f", t.counter.Total()))
		runLogger.End()
	}

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			return err
		}
	}

	atexit.Exit(0)

	return nil
}

func setupRecording(t *builtTopology) (
	datarecording.DataRecorder,
	*datarecording.RunLogger,
) {
	var recorder datarecording.DataRecorder

	switch {
	case clickHouseHost != "":
		recorder = datarecording.NewClickHouseRecorder(
			clickHouseHost, clickHousePort,
			clickHouseDB, clickHouseUser, clickHousePass, 0)
	case sqlitePath != "":
		recorder = datarecording.New(sqlitePath)
	default:
		return nil, nil
	}

	runLogger := datarecording.NewRunLogger(recorder)
	runLogger.Start()

	transferLogger := datarecording.NewTransferLogger(recorder, "transfers")
	for _, h := range t.hosts {
		h.Dispatcher().AcceptHook(transferLogger)
	}

	return recorder, runLogger
}

func setupMonitor(t *builtTopology) {
	monitor := monitoring.NewMonitor()
	if monitorPort != 0 {
		monitor = monitor.WithPortNumber(monitorPort)
	}

	monitor.RegisterEngine(t.simulation.Engine())
	monitor.RegisterTrafficCounter(t.counter)
	for _, c := range t.simulation.Components() {
		monitor.RegisterComponent(c)
	}

	monitor.StartServer()
}
