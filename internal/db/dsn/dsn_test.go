package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siga-admin/siga/internal/config"
)

func TestCreate(t *testing.T) {
	cfg := &config.Config{
		DB: config.DB{
			Host:     "db.example.org",
			Port:     3306,
			User:     "siga",
			Password: "secret",
			Name:     "siga",
		},
	}

	t.Run("mysql", func(t *testing.T) {
		cfg.DB.GormEngine = config.EngineMySQL
		cfg.DB.Extras = "charset=utf8mb4&parseTime=True"

		got := Create(cfg)
		assert.Equal(t, "siga:secret@tcp(db.example.org:3306)/siga?charset=utf8mb4&parseTime=True", got)
	})

	t.Run("postgres", func(t *testing.T) {
		cfg.DB.GormEngine = config.EnginePostgres
		cfg.DB.Port = 5432
		cfg.DB.Extras = "sslmode=disable"

		got := Create(cfg)
		assert.Equal(t, "host=db.example.org port=5432 user=siga password=secret dbname=siga sslmode=disable", got)
	})
}
