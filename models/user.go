package models

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/guildroster/roster_backend/config"
	"github.com/guildroster/roster_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	GuildId   string    `gorm:"type:char(36);index" json:"guild_id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty"`
	Role      UserRole  `gorm:"type:enum('A', 'O', 'M');default:M" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Role     UserRole `json:"role" binding:"required"`
}

/*
caches:
	User:$username
	Token:$jwt -> username
*/

type LoginInfo struct {
	Token     string   `json:"token"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	GuildId   string   `json:"guild_id"`
	GuildName string   `json:"guild_name"`
	ExpiresAt int64    `json:"expires_at"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	user := User{}

	// get User info
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
			return nil, errors.New("invalid username or password")
		}
	}

	// check login credentials
	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errors.New("invalid username or password")
		}
		return nil, err
	}
	if !utils.DereferencePtr(user.IsActive) {
		return nil, errors.New("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.GuildId, string(user.Role))
	if err != nil {
		return nil, err
	}
	lifespan := utils.TokenLifespan()

	result := LoginInfo{
		Token:     token,
		Name:      user.Name,
		Role:      user.Role,
		GuildId:   user.GuildId,
		ExpiresAt: time.Now().Add(lifespan).Unix(),
	}
	var guild Guild
	if err := db.WithContext(ctx).Where("id = ?", user.GuildId).First(&guild).Error; err == nil {
		result.GuildName = guild.Name
	}

	// store token in redis
	if err := config.SetRedisValue("Token:"+token, user.Username, lifespan); err != nil {
		return nil, err
	}
	if !exists {
		if err := config.SetRedisObject("User:"+user.Username, &user, lifespan); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	return true, nil
}

// GetSessionUser resolves a token stored by Login back to its user.
func GetSessionUser(ctx context.Context, token string) (*User, error) {
	username, exists, err := config.GetRedisValue("Token:" + token)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.New("session expired")
	}

	var user User
	cached, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if !cached {
		db := config.GetDB()
		if err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
	}
	if !utils.DereferencePtr(user.IsActive) {
		return nil, errors.New("user is disabled")
	}
	return &user, nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return nil, errors.New("guild id is required")
	}
	if !input.Role.IsValid() {
		return nil, errors.New("invalid role")
	}
	// only admins hand out admin
	if input.Role == UserRoleAdmin {
		if role, _ := utils.GetUserRoleFromContext(ctx); UserRole(role) != UserRoleAdmin {
			return nil, errors.New("only admins can create admins")
		}
	}
	username := html.EscapeString(strings.TrimSpace(input.Username))
	if err := utils.ValidateUnique[User](ctx, "", "username", username, 0); err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		GuildId:  guildId,
		Username: username,
		Name:     input.Name,
		Password: string(hashedPassword),
		Role:     input.Role,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.FriendlyDBError(err, "username")
	}
	user.PrepareGive()
	return &user, nil
}

// UpsertAdmin creates or resets an admin account; used by cmd/seed-admin.
func UpsertAdmin(ctx context.Context, guildId string, username string, name string, password string) (*User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var user User
	err = db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if err == nil {
		err = db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
			"GuildId":  guildId,
			"Name":     name,
			"Password": string(hashedPassword),
			"Role":     UserRoleAdmin,
			"IsActive": true,
		}).Error
		if err != nil {
			return nil, err
		}
		if err := user.RemoveInstanceRedis(); err != nil {
			return nil, err
		}
		user.PrepareGive()
		return &user, nil
	}

	user = User{
		GuildId:  guildId,
		Username: username,
		Name:     name,
		Password: string(hashedPassword),
		Role:     UserRoleAdmin,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func GetUsers(ctx context.Context) ([]*User, error) {
	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return nil, errors.New("guild id is required")
	}

	db := config.GetDB()
	var results []*User
	if err := db.WithContext(ctx).Where("guild_id = ?", guildId).Order("username").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, u := range results {
		u.PrepareGive()
	}
	return results, nil
}

func ToggleActiveUser(ctx context.Context, id int, isActive bool) (*User, error) {
	guildId, ok := utils.GetGuildIdFromContext(ctx)
	if !ok || guildId == "" {
		return nil, errors.New("guild id is required")
	}
	user, err := utils.FetchModel[User](ctx, guildId, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).UpdateColumn("IsActive", isActive).Error; err != nil {
		return nil, err
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	user.IsActive = &isActive
	user.PrepareGive()
	return user, nil
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, errors.New("user id is required")
	}

	var user User
	db := config.GetDB()
	if err := db.WithContext(ctx).First(&user, userId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	// check oldPassword
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&user).UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		return nil, err
	}
	if err := user.RemoveInstanceRedis(); err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}
