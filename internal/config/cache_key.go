package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// InterviewEventsChannel returns the Redis PubSub channel name carrying
// state-change notifications for a single interview session.
func (r *CacheKeyStruct) InterviewEventsChannel(interviewID string) string {
	return fmt.Sprintf("interview:%s:events", interviewID)
}

var CacheKey = NewCacheKeyStruct()
