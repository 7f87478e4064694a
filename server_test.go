package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/hostpilotpro/hostpilot_backend/config"
	"github.com/hostpilotpro/hostpilot_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func pushBody(t *testing.T, data []byte) []byte {
	t.Helper()
	var msg PubSubMessage
	msg.Message.ID = "msg-1"
	msg.Message.Data = data
	msg.Subscription = "projects/p/subscriptions/water-bill-scan"
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

func servePush(body []byte) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/pubsub/water-bill-scan", waterScanPubSubHandler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pubsub/water-bill-scan", bytes.NewReader(body)))
	return w.Code
}

func TestWaterScanPushAcksBadMessages(t *testing.T) {
	// acked so Pub/Sub does not redeliver forever
	assert.Equal(t, http.StatusNoContent, servePush([]byte("not json")))
	assert.Equal(t, http.StatusNoContent, servePush(pushBody(t, []byte("not json"))))
	assert.Equal(t, http.StatusNoContent, servePush(pushBody(t, []byte(`{"organization_id":""}`))))
}

func TestWaterScanPushRunsScan(t *testing.T) {
	t.Setenv("ALERTS_PUBSUB_TOPIC", "")
	cfg := config.NewGormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	conn, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(conn))
	previous := config.GetDB()
	config.SetDB(conn)
	t.Cleanup(func() {
		config.SetDB(previous)
		_ = sqlDB.Close()
	})

	org, err := models.CreateOrganization(context.Background(), &models.NewOrganization{Name: "Sunset"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, servePush(pushBody(t, []byte(`{"organization_id":"`+org.ID+`"}`))))
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitAndTrim(" https://a.example, ,https://b.example "))
	assert.Empty(t, splitAndTrim(""))
}
