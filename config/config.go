package config

import (
	"flag"
	"os"
	"sync"
)

const (
	defaultServerAddr  = ":5000"
	defaultDatabaseDSN = ""
	defaultCashfreeEnv = "SANDBOX"
	defaultReturnURL   = "https://www.r2ps.in/payment-status.html"
	defaultLogLevel    = "info"
)

type Config struct {
	ServerAddr        string
	DatabaseDSN       string
	CashfreeAppID     string
	CashfreeSecretKey string
	CashfreeEnv       string
	ReturnURL         string
	LogLevel          string
}

var (
	once      sync.Once
	singleton *Config
)

// New returns new Config. It parses command line and environment variables only once.
// Gateway credentials are taken from environment only.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddr, "payment server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "application database DSN")
		flag.StringVar(&cfg.CashfreeEnv, "e", defaultCashfreeEnv, "cashfree environment (SANDBOX or PRODUCTION)")
		flag.StringVar(&cfg.ReturnURL, "u", defaultReturnURL, "payment status return url")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dataBaseURIEnv := os.Getenv("DATABASE_URI"); dataBaseURIEnv != "" {
			cfg.DatabaseDSN = dataBaseURIEnv
		}
		if cashfreeEnvEnv := os.Getenv("CASHFREE_ENV"); cashfreeEnvEnv != "" {
			cfg.CashfreeEnv = cashfreeEnvEnv
		}
		if returnURLEnv := os.Getenv("RETURN_URL"); returnURLEnv != "" {
			cfg.ReturnURL = returnURLEnv
		}
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			cfg.LogLevel = logLevelEnv
		}

		cfg.CashfreeAppID = os.Getenv("CASHFREE_APP_ID")
		cfg.CashfreeSecretKey = os.Getenv("CASHFREE_SECRET_KEY")

		singleton = &cfg
	})

	return singleton, nil
}
