// Command ingest loads a battery test campaign from disk: cycler CSV
// exports per channel directory, optional Gamry EIS sweeps, merged into one
// batch and written back out as per-cell workbooks.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"battlab/internal/analysis"
	"battlab/internal/cellbuilder"
	"battlab/internal/config"
	"battlab/internal/cycler"
	"battlab/internal/eis"
	"battlab/internal/exporter"
	"battlab/internal/files"
	"battlab/internal/infrastructure"
)

// eisSOC is the state of charge the campaign's impedance sweeps are taken
// at, half charge per the test schedule.
const eisSOC = 0.5

func main() {
	configPath := flag.String("config", "battlab.yaml", "path to the YAML configuration file")
	dataDir := flag.String("data", "", "cycler data directory, overrides the configured path")
	eisDir := flag.String("eis", "", "EIS DTA directory, overrides the configured path")
	outDir := flag.String("out", "", "export directory, overrides the configured path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *eisDir != "" {
		cfg.Paths.EISDir = *eisDir
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}

	logger, closeLog, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	logger = logger.With(slog.String("run_id", uuid.New().String()))

	start := time.Now()
	logger.Info("starting campaign ingestion",
		slog.String("data_dir", cfg.Paths.DataDir),
		slog.String("eis_dir", cfg.Paths.EISDir),
		slog.String("output_dir", cfg.Paths.OutputDir))

	cells, err := loadCells(logger, cfg)
	if err != nil {
		logger.Error("Failed to load cycler data", "error", err)
		os.Exit(1)
	}
	if len(cells) == 0 {
		logger.Error("No channel directories found", slog.String("data_dir", cfg.Paths.DataDir))
		os.Exit(1)
	}

	builder := cellbuilder.New(logger)
	if cfg.Paths.EISDir != "" {
		eisCells, err := eis.NewLoader(logger).LoadDirectory(cfg.Paths.EISDir, eisSOC)
		if err != nil {
			logger.Error("Failed to load EIS data", "error", err)
			os.Exit(1)
		}
		builder.MergeEIS(eisCells, cells)
	}

	batch := cycler.NewBatch(cells...)
	analysis.New(logger).AssignCellNumbers(batch, 0)

	exp := exporter.New(logger)
	for _, cell := range batch.Cells() {
		path := filepath.Join(cfg.Paths.OutputDir, fmt.Sprintf("cell%03d.xlsx", cell.CellNumber))
		if err := exp.WriteCellWorkbook(cell, path); err != nil {
			logger.Error("Failed to export cell workbook",
				slog.Int("cell_number", cell.CellNumber), "error", err)
			os.Exit(1)
		}
	}

	cycles := 0
	for _, cell := range batch.Cells() {
		cycles += cell.Len()
	}
	logger.Info("campaign ingestion complete",
		slog.Int("cells", batch.Len()),
		slog.Int("cycles", cycles),
		slog.Duration("elapsed", time.Since(start)))
}

// loadCells builds one cell per channel directory under the data dir. When
// the campaign config names channels explicitly, only those are loaded and
// their configured cell numbers apply; otherwise every Channel_<n>
// directory is loaded with the channel number doubling as cell number.
func loadCells(logger *slog.Logger, cfg *config.Config) ([]*cycler.Cell, error) {
	dirs, err := files.NewDiscovery("").ChannelDirs(cfg.Paths.DataDir)
	if err != nil {
		return nil, err
	}

	type target struct {
		cellNumber int
		channel    int
	}
	var targets []target
	if len(cfg.Campaign.Channels) > 0 {
		for i, channel := range cfg.Campaign.Channels {
			targets = append(targets, target{cellNumber: cfg.Campaign.Cells[i], channel: channel})
		}
	} else {
		for channel := range dirs {
			targets = append(targets, target{cellNumber: channel, channel: channel})
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i].channel < targets[j].channel })
	}

	builder := cellbuilder.New(logger)
	filter := cfg.Steps.Filter()
	var cells []*cycler.Cell
	for _, tg := range targets {
		dir, ok := dirs[tg.channel]
		if !ok {
			return nil, fmt.Errorf("channel %d has no Channel_%d directory under %s",
				tg.channel, tg.channel, cfg.Paths.DataDir)
		}
		logger.Info("processing channel",
			slog.Int("channel", tg.channel),
			slog.Int("cell_number", tg.cellNumber))
		cell := cycler.NewCell(tg.cellNumber, tg.channel)
		if err := builder.LoadDirectory(cell, dir, filter); err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
