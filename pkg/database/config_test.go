package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alijeyrad/fieldcare/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "plain",
			cfg:  Config{Host: "db", Port: 5432, User: "agent", Password: "s3cret", DBName: "fieldcare", SSLMode: "disable"},
			want: "host=db port=5432 user=agent password=s3cret dbname=fieldcare sslmode=disable",
		},
		{
			name: "quoted password",
			cfg:  Config{Host: "db", Port: 5432, Password: `it's a \pass`},
			want: `host=db port=5432 password='it\'s a \\pass'`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestFromCentralConfigPoolDefaults(t *testing.T) {
	cfg := FromCentralConfig(config.DatabaseConfig{Host: "db", Port: 5432, DBName: "fieldcare"})

	assert.Equal(t, 4, cfg.MaxOpenConns)
	assert.Equal(t, 2, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}
