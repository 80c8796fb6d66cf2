package services

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cachedProfile struct {
	profile   PublicProfile
	expiresAt time.Time
}

// ProfileCache holds recently served public profiles for a short TTL.
// A nil *ProfileCache is valid and caches nothing.
type ProfileCache struct {
	lru *lru.Cache[uint, cachedProfile]
	ttl time.Duration
	now func() time.Time
}

func NewProfileCache(size int, ttl time.Duration) (*ProfileCache, error) {
	c, err := lru.New[uint, cachedProfile](size)
	if err != nil {
		return nil, err
	}
	return &ProfileCache{lru: c, ttl: ttl, now: time.Now}, nil
}

func (c *ProfileCache) Get(userID uint) (*PublicProfile, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.lru.Get(userID)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.lru.Remove(userID)
		return nil, false
	}
	profile := entry.profile
	return &profile, true
}

func (c *ProfileCache) Set(profile *PublicProfile) {
	if c == nil {
		return
	}
	c.lru.Add(profile.ID, cachedProfile{profile: *profile, expiresAt: c.now().Add(c.ttl)})
}

func (c *ProfileCache) Invalidate(userID uint) {
	if c == nil {
		return
	}
	c.lru.Remove(userID)
}
