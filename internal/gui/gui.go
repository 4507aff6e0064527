// Package gui provides the graphical user interface for rescale-copy.
package gui

import (
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"

	"github.com/rescale/rescale-copy/internal/config"
	"github.com/rescale/rescale-copy/internal/copier"
	"github.com/rescale/rescale-copy/internal/events"
	"github.com/rescale/rescale-copy/internal/logging"
	"github.com/rescale/rescale-copy/internal/progress"
)

// LaunchGUI opens the copy window and blocks until it is closed.
func LaunchGUI(configFile string) error {
	if err := checkDisplay(); err != nil {
		return err
	}

	eventBus := events.NewEventBus(0)
	logger := logging.NewLogger("gui", eventBus)

	// Warnings and errors only unless RESCALE_DEBUG is set
	if os.Getenv("RESCALE_DEBUG") != "" {
		logging.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		logging.SetGlobalLevel(zerolog.WarnLevel)
	}

	if configFile == "" {
		configFile = config.GetDefaultConfigPath()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Warn().Err(err).Str("path", configFile).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if cfg.LogFile {
		if path, err := logger.EnableFile(config.LogDirectory()); err == nil {
			logger.Infof("Logging to %s", path)
		}
	}
	defer logger.Close()

	coord := copier.New(copier.Options{
		FileCount:   cfg.FileCount,
		ChunkSize:   cfg.ChunkSize,
		NoOverwrite: !cfg.Overwrite,
		Sink:        progress.NewEventSink(eventBus),
		Logger:      logger,
	})

	myApp := app.NewWithID("com.rescale.copy")
	myApp.Settings().SetTheme(&copyTheme{})

	mainWindow := myApp.NewWindow("Rescale Copy")
	mainWindow.SetMaster()

	view := NewCopyView(coord, eventBus, mainWindow, logger)
	mainWindow.SetContent(view.Build())
	view.Start()

	mainWindow.Resize(fyne.NewSize(760, 420))
	mainWindow.CenterOnScreen()
	mainWindow.SetOnClosed(view.Stop)

	mainWindow.ShowAndRun()
	return nil
}
