package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"onestop-realtime/internal/channel"
	"onestop-realtime/internal/session"
)

// HealthResponse represents the status endpoint response
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    int64        `json:"uptime_seconds"`
	Session   *SessionInfo `json:"session"`
	Channel   *ChannelInfo `json:"channel"`
}

// SessionInfo represents the session store state
type SessionInfo struct {
	LoggedIn bool   `json:"logged_in"`
	Role     string `json:"role"`
	Loading  bool   `json:"loading"`
}

// ChannelInfo represents the live channel state
type ChannelInfo struct {
	Status     string `json:"status"`
	Reconnects int    `json:"reconnects"`
}

var startTime = time.Now()

// statusHandler reports session and channel state
func statusHandler(c *gin.Context, sess session.Store, manager *channel.Manager) {
	identity := sess.Identity()
	channelStatus := manager.Status()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    int64(time.Since(startTime).Seconds()),
		Session: &SessionInfo{
			LoggedIn: sess.Credential() != "",
			Role:     identity.Role,
			Loading:  sess.Loading(),
		},
		Channel: &ChannelInfo{
			Status:     string(channelStatus),
			Reconnects: manager.Reconnects(),
		},
	}

	statusCode := http.StatusOK
	if sess.Credential() != "" && channelStatus == channel.StatusError {
		response.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
