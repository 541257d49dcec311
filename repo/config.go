package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/cpacia/dashlink/version"
	"github.com/jessevdk/go-flags"
	"github.com/natefinch/lumberjack"
	"github.com/op/go-logging"
)

const (
	defaultConfigFilename = "dashlink.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "dashlink.log"
	defaultGatewayAddr    = "127.0.0.1:4102"
)

var (
	DefaultHomeDir    = btcutil.AppDataDir("dashlink", false)
	defaultConfigFile = filepath.Join(DefaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(DefaultHomeDir, defaultLogDirname)

	fileLogFormat   = logging.MustStringFormatter(`%{time:2006-01-02T15:04:05} [%{level}] [%{module}] %{message}`)
	stdoutLogFormat = logging.MustStringFormatter(`%{color:reset}%{color}%{time:15:04:05.000} [%{level}] [%{module}] %{message}`)
)

// Config defines the configuration options for dashlink.
//
// See LoadConfig for details on the configuration load process.
type Config struct {
	ShowVersion bool     `short:"v" long:"version" description:"Display version information and exit" no-ini:"true"`
	ConfigFile  string   `short:"C" long:"configfile" description:"Path to configuration file" no-ini:"true"`
	DataDir     string   `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir      string   `long:"logdir" description:"Directory to log output."`
	LogLevel    string   `short:"l" long:"loglevel" description:"set the logging level [debug, info, notice, warning, error, critical]"`
	GatewayAddr string   `long:"gatewayaddr" description:"Address for the dashboard API and device bridge to listen on"`
	AllowedIPs  []string `long:"allowedip" description:"Only accept API connections from these IPs"`
	APIUsername string   `long:"apiusername" description:"Username for API basic authentication"`
	APIPassword string   `long:"apipassword" description:"SHA256 hex of the password for API basic authentication"`
	APICookie   string   `long:"apicookie" description:"Require this value in the API auth cookie"`
	NoCors      bool     `long:"nocors" description:"Disable CORS headers on the API"`
	UseSSL      bool     `long:"usessl" description:"Serve the API over TLS"`
	SSLCert     string   `long:"sslcert" description:"Path to the TLS certificate"`
	SSLKey      string   `long:"sslkey" description:"Path to the TLS key"`
	DisableLog  bool     `long:"disableactivitylog" description:"Do not persist the notification activity log"`
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// Command line options always take precedence.
func LoadConfig() (*Config, []string, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, []string, error) {
	// Default config.
	cfg := Config{
		DataDir:     DefaultHomeDir,
		ConfigFile:  defaultConfigFile,
		LogDir:      defaultLogDir,
		LogLevel:    "info",
		GatewayAddr: defaultGatewayAddr,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag|flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil, nil, err
		}
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.String())
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default|flags.IgnoreUnknown)
	if _, err := os.Stat(preCfg.ConfigFile); os.IsNotExist(err) {
		if err := createDefaultConfigFile(preCfg.ConfigFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating a default config file: %v\n", err)
		}
	}

	var configFileError error
	if err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.SSLCert = cleanAndExpandPath(cfg.SSLCert)
	cfg.SSLKey = cleanAndExpandPath(cfg.SSLKey)

	if cfg.UseSSL && (cfg.SSLCert == "" || cfg.SSLKey == "") {
		err := errors.New("usessl requires both sslcert and sslkey")
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	setupLogging(cfg.LogDir, cfg.LogLevel)

	// Warn about missing config file only after all other configuration is
	// done. This prevents the warning on help messages and invalid options.
	if configFileError != nil {
		log.Warningf("%v", configFileError)
	}
	return &cfg, remainingArgs, nil
}

// AllowedIPSet returns the allowed IPs as a set for the gateway.
func (c *Config) AllowedIPSet() map[string]bool {
	set := make(map[string]bool, len(c.AllowedIPs))
	for _, ip := range c.AllowedIPs {
		set[ip] = true
	}
	return set
}

// createDefaultConfigFile writes a config file holding every option with
// its default value commented out.
func createDefaultConfigFile(destinationPath string) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0700); err != nil {
		return err
	}
	defaults := Config{
		DataDir:     DefaultHomeDir,
		LogDir:      defaultLogDir,
		GatewayAddr: defaultGatewayAddr,
		LogLevel:    "info",
	}
	parser := flags.NewParser(&defaults, flags.None)
	return flags.NewIniParser(parser).WriteFile(destinationPath,
		flags.IniIncludeComments|flags.IniIncludeDefaults|flags.IniCommentDefaults)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return path
	}
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = strings.Replace(path, "~", homeDir, 1)
		}
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func setupLogging(logDir, logLevel string) {
	backendStdout := logging.NewLogBackend(os.Stdout, "", 0)
	backendStdoutFormatter := logging.NewBackendFormatter(backendStdout, stdoutLogFormat)

	if logDir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, defaultLogFilename),
			MaxSize:    10, // Megabytes
			MaxBackups: 3,
			MaxAge:     30, // Days
		}

		backendFile := logging.NewLogBackend(rotator, "", 0)
		backendFileFormatter := logging.NewBackendFormatter(backendFile, fileLogFormat)
		logging.SetBackend(backendStdoutFormatter, backendFileFormatter)
	} else {
		logging.SetBackend(backendStdoutFormatter)
	}

	logging.SetLevel(parseLogLevel(logLevel), "")
}

func parseLogLevel(logLevel string) logging.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return logging.DEBUG
	case "notice":
		return logging.NOTICE
	case "warning":
		return logging.WARNING
	case "error":
		return logging.ERROR
	case "critical":
		return logging.CRITICAL
	}
	return logging.INFO
}
