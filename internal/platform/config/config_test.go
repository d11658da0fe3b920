package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := FromEnv()
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, StockPolicyStrict, cfg.StockPolicy)
		assert.Equal(t, 5*time.Second, cfg.TxTimeout)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Equal(t, "ayuda.audit", cfg.Kafka.AuditTopic)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AYUDA_ADDR", ":9090")
		t.Setenv("AYUDA_STOCK_POLICY", "BEST_EFFORT")
		t.Setenv("AYUDA_KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("AYUDA_TX_TIMEOUT", "750ms")

		cfg := FromEnv()
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, StockPolicyBestEffort, cfg.StockPolicy)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 750*time.Millisecond, cfg.TxTimeout)
	})

	t.Run("unknown stock policy falls back to strict", func(t *testing.T) {
		t.Setenv("AYUDA_STOCK_POLICY", "yolo")
		assert.Equal(t, StockPolicyStrict, FromEnv().StockPolicy)
	})
}
