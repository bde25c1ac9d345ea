package models

import "time"

// User is the registry record for a Telegram account that has contacted
// the bot. Approval is granted manually by the owner; a rejected user
// simply stays (or goes back to) unapproved, so re-approval is always
// possible.
type User struct {
	ID          int64     `gorm:"primarykey" json:"id"`
	Username    string    `json:"username"`
	PlatformUID string    `json:"platform_uid"`
	Approved    bool      `json:"approved"`
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// UserStatus is what /my reports back to a user.
type UserStatus struct {
	Approved   bool   `json:"approved"`
	WinStreak  int    `json:"win_streak"`
	LossStreak int    `json:"loss_streak"`
	LastSignal string `json:"last_signal"`
}
