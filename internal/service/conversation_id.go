package service

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewConversationID mints a conversation identifier: the current Unix
// millisecond time in base 36 followed by 64 random bits in base 36.
func NewConversationID() string {
	u := uuid.New()
	return strconv.FormatInt(time.Now().UnixMilli(), 36) +
		strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
}
