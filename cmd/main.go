package main

import (
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/brettbedarf/memfs/registry"
	"github.com/brettbedarf/memfs/requests"
	"github.com/brettbedarf/memfs/server"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		nodesDef   string
		umount     bool
		printTree  bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (.yaml, .yml or .json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.StringVar(&nodesDef, "nodes", "", "Path to nodes manifest file (.yaml, .yml or .json)")
	flag.StringVar(&nodesDef, "n", "", "--nodes (shorthand)")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.BoolVar(&printTree, "tree", false, "Print the seeded tree and exit instead of mounting")
	flag.Parse()

	// Flags win over the config file
	override := &config.ConfigOverride{}
	if configPath != "" {
		fileOverride, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			util.InitializeLogger(util.ErrorLevel)
			logger := util.GetLogger("main")
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		override = fileOverride
	}
	// An explicit -v/-verbose wins; otherwise the file's verbose (or the default) stays
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verbose" || f.Name == "v" {
			override.LogLvl = &verbose
		}
	})
	cfg := config.NewConfig(override)

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	mnt := flag.Arg(0)
	logger.Info().Int("log_level", cfg.LogLvl).Str("nodes", nodesDef).Str("mnt", mnt).Msg("MemFS initializing")
	if mnt == "" && !printTree {
		logger.Fatal().Msg("Mount point not specified; it must be passed as the argument")
	}

	fs, err := registry.Default.Open(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open filesystem")
	}
	defer registry.Default.Close(fs.ID()) // nolint:errcheck

	if nodesDef != "" {
		manifest, err := requests.LoadManifestFile(nodesDef)
		if err != nil {
			logger.Fatal().Err(err).Str("nodes", nodesDef).Msg("Failed to load nodes manifest")
		}
		dirs, files := manifest.Apply(fs)
		logger.Info().Int("directories", dirs).Int("files", files).Msg("Added new nodes to filesystem")
	} else {
		logger.Warn().Msg("No nodes file provided")
	}

	if printTree {
		if err := fs.WriteTree(os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("Failed to print tree")
		}
		return
	}

	// Try unmount if requested
	if umount { // send cli command
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	memFS := server.Wrap(fs)
	if err := memFS.Serve(mnt); err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Str("uri", fs.URI(fs.Root())).Msg("Filesystem mounted successfully")

	// Wait for termination signal
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	if err := memFS.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	} else {
		logger.Info().Msg("Filesystem unmounted successfully")
	}
}
