package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bionicotaku/lingo-utils-fbsr"
)

const envPrefix = "FACEBOOK_"

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	envPath := defaultEnvPath()
	if err := loadEnvFile(envPath); err != nil {
		logger.Warn("load env file", zap.String("path", envPath), zap.Error(err))
	}

	secret := flag.String("secret", os.Getenv(envPrefix+"SECRET"), "Application secret (env FACEBOOK_SECRET)")
	token := flag.String("token", os.Getenv("FACEBOOK_SIGNED_REQUEST"), "Signed request to verify (env FACEBOOK_SIGNED_REQUEST)")
	envFlag := flag.String("env", envPath, "Path to .env file")
	flag.Parse()

	if *envFlag != "" && *envFlag != envPath {
		if err := loadEnvFile(*envFlag); err != nil {
			logger.Warn("load env file", zap.String("path", *envFlag), zap.Error(err))
		}
		if *secret == "" {
			*secret = os.Getenv(envPrefix + "SECRET")
		}
		if *token == "" {
			*token = os.Getenv("FACEBOOK_SIGNED_REQUEST")
		}
	}

	if *token == "" {
		flag.Usage()
		logger.Fatal("token is required (via flag, .env, or environment variables)")
	}

	var claims fbsr.Claims
	if *secret != "" {
		claims, err = fbsr.Parse([]byte(*secret), *token)
	} else {
		cfg, cfgErr := fbsr.LoadApplicationConfig(envPrefix)
		if cfgErr != nil {
			flag.Usage()
			logger.Fatal("secret is required", zap.Error(cfgErr))
		}
		app, appErr := fbsr.NewApplication(cfg)
		if appErr != nil {
			logger.Fatal("create application", zap.Error(appErr))
		}
		logger.Info("using application from environment", zap.Stringer("application", app))
		claims, err = app.ParseSignedRequest(*token)
	}
	if err != nil {
		logger.Fatal("verification failed", zap.String("code", string(fbsr.CodeOf(err))), zap.Error(err))
	}

	printClaims(claims)
}

func printClaims(claims fbsr.Claims) {
	fmt.Printf("== Signed Request Verified (%s) ==\n", fbsr.Algorithm)
	fmt.Printf("algorithm          : %s\n", claims.Algorithm)
	if claims.UserID != nil {
		fmt.Printf("user_id            : %d\n", *claims.UserID)
	}
	if claims.Code != nil {
		fmt.Printf("code               : %s\n", *claims.Code)
	}
	if claims.OAuthToken != nil {
		fmt.Printf("oauth_token        : %s\n", mask(*claims.OAuthToken))
	}
	if claims.TokenForBusiness != nil {
		fmt.Printf("token_for_business : %s\n", mask(*claims.TokenForBusiness))
	}
	if claims.IssuedAt != nil {
		fmt.Printf("issued_at          : %s\n", claims.IssuedAtTime().Format(time.RFC3339))
	}
	if claims.Expires != nil {
		fmt.Printf("expires            : %s\n", claims.ExpiresAt().Format(time.RFC3339))
	}
}

func mask(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func defaultEnvPath() string {
	if path := os.Getenv("FBSR_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
