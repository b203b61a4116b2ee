package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dev-centersport/wms-sub000/internal/infrastructure/migration"
	"github.com/dev-centersport/wms-sub000/pkg/config"
	"github.com/dev-centersport/wms-sub000/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "up | down | version")
	steps := flag.Int("steps", 0, "pasos a revertir con down (0 = todos)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	m, err := migration.New(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch *cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down(*steps)
	case "version":
		var (
			v     uint
			dirty bool
		)
		v, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido: %s\n", *cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		os.Exit(1)
	}
}
