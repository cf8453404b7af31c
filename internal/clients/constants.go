package clients

import "time"

const (
	MAX_RETRIES     = 3
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 16 * time.Second
	DEFAULT_TIMEOUT = 8 * time.Second
	USER_AGENT      = "sentifi-bot/0.1 (+https://github.com/spacesedan/sentifi)"
)
