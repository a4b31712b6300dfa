package dto

import "time"

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Name     string `json:"name" binding:"required,max=120"`
	Password string `json:"password" binding:"required,max=72"`
}

// UserResponse is returned when user info is needed (e.g. after login).
type UserResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	TelegramChatID *string `json:"telegramChatId"`
}

type AuthResponse struct {
	User      UserResponse       `json:"user"`
	Workspace *WorkspaceResponse `json:"workspace,omitempty"`
}

type NotificationSettings struct {
	Enabled bool            `json:"enabled"`
	Events  map[string]bool `json:"events"`
}

type WorkspaceResponse struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	OwnerID              string               `json:"ownerId"`
	Role                 string               `json:"role,omitempty"`
	TelegramConfigured   bool                 `json:"telegramConfigured"`
	TelegramChatID       *string              `json:"telegramChatId"`
	NotificationSettings NotificationSettings `json:"notificationSettings"`
	CreatedAt            time.Time            `json:"createdAt"`
}

type ListWorkspacesResponse struct {
	Items []WorkspaceResponse `json:"items"`
}

type MemberResponse struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type ListMembersResponse struct {
	Items []MemberResponse `json:"items"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type TransferOwnershipRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"omitempty,max=254"`
	Role  string `json:"role"`
}

type InviteResponse struct {
	ID            string     `json:"id"`
	WorkspaceID   string     `json:"workspaceId"`
	WorkspaceName string     `json:"workspaceName,omitempty"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	AcceptedAt    *time.Time `json:"acceptedAt,omitempty"`
	Token         string     `json:"token,omitempty"`
	URL           string     `json:"url,omitempty"`
}

// TelegramSettingsRequest updates workspace Telegram delivery. Omitted fields
// are kept; "" clears the bot token or chat id.
type TelegramSettingsRequest struct {
	BotToken             *string               `json:"botToken"`
	ChatID               *string               `json:"chatId"`
	NotificationSettings *NotificationSettings `json:"notificationSettings"`
}

type LinkTelegramRequest struct {
	ChatID string `json:"chatId" binding:"max=64"`
}
