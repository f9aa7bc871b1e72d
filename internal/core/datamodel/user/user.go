package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Username     string     `gorm:"column:username;size:50;uniqueIndex;not null"`
	FullName     string     `gorm:"column:full_name;size:100;not null"`
	Email        string     `gorm:"column:email;size:254;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         string     `gorm:"column:role;size:20;not null;index"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type PasswordResetToken struct {
	ID        int64     `gorm:"primaryKey"`
	Token     string    `gorm:"column:token;size:128;uniqueIndex;not null"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Used      bool      `gorm:"column:used;not null;default:false"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// Active reports whether the token can still be redeemed at now.
func (t *PasswordResetToken) Active(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
