package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPaperKey returns the cache key for the examinee view of an exam
func (r *CacheKeyStruct) ExamPaperKey(examID int64) string {
	return fmt.Sprintf("exam:%d:paper", examID)
}

// RateLimitKey returns the counter key for a client in a fixed rate limit window
func (r *CacheKeyStruct) RateLimitKey(scope, clientIP string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, clientIP, window)
}

var CacheKey = NewCacheKeyStruct()
