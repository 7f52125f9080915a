package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bionicotaku/lingo-utils-fbsr"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	envPath := ".env"
	if path := os.Getenv("FBSR_ENV_FILE"); path != "" {
		envPath = path
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("load env file", zap.String("path", envPath), zap.Error(err))
	}

	secret := flag.String("secret", os.Getenv("FACEBOOK_SECRET"), "Application secret (env FACEBOOK_SECRET)")
	algorithm := flag.String("algorithm", "HMAC-SHA256", "Value of the algorithm claim")
	userID := flag.Int64("user-id", 0, "user_id claim (omitted when 0)")
	oauthToken := flag.String("oauth-token", "", "oauth_token claim (omitted when empty)")
	code := flag.String("code", "", "code claim (omitted when empty)")
	tokenForBusiness := flag.String("token-for-business", "", "token_for_business claim (omitted when empty)")
	expiresIn := flag.Duration("expires-in", 0, "Sets expires to now plus this duration (omitted when 0)")
	noIssuedAt := flag.Bool("no-issued-at", false, "Omit the issued_at claim")
	flag.Parse()

	if *secret == "" {
		flag.Usage()
		logger.Fatal("secret is required (via flag, .env, or environment variables)")
	}

	now := time.Now()
	claims := fbsr.Claims{Algorithm: *algorithm}
	if *userID != 0 {
		claims.UserID = fbsr.Int64(*userID)
	}
	if *oauthToken != "" {
		claims.OAuthToken = fbsr.String(*oauthToken)
	}
	if *code != "" {
		claims.Code = fbsr.String(*code)
	}
	if *tokenForBusiness != "" {
		claims.TokenForBusiness = fbsr.String(*tokenForBusiness)
	}
	if *expiresIn > 0 {
		claims.Expires = fbsr.Int64(now.Add(*expiresIn).Unix())
	}
	if !*noIssuedAt {
		claims.IssuedAt = fbsr.Int64(now.Unix())
	}

	token, err := fbsr.Generate([]byte(*secret), claims)
	if err != nil {
		logger.Fatal("generate signed request", zap.String("code", string(fbsr.CodeOf(err))), zap.Error(err))
	}
	fmt.Println(token)
}
