// token 为运维接口签发 JWT
package main

import (
	"InsightLedger/internal/api/config"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/security"
	"flag"
	"fmt"
	log "log/slog"
	"os"
	"strings"
)

func main() {
	subject := flag.String("sub", "ops", "operator name")
	roles := flag.String("roles", consts.RoleOperator, "comma separated roles")
	flag.Parse()

	if err := config.LoadConfig(); err != nil {
		log.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	token, err := security.NewSigner(config.Cfg.Auth).GenerateToken(*subject, strings.Split(*roles, ","))
	if err != nil {
		log.Error("failed to sign token", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
