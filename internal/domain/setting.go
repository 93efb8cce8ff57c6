package domain

import "time"

type Setting struct {
	Key       string    `json:"key" gorm:"primaryKey;size:64"`
	Value     string    `json:"value" gorm:"type:text"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Setting keys read by the order, payment and notification paths.
const (
	SettingStoreName             = "store_name"
	SettingBaseURL               = "base_url"
	SettingQRISBaseString        = "qris_base_string"
	SettingDownloadExpiryMinutes = "download_expiry_minutes"
	SettingWebhookAPIKey         = "webhook_api_key"
	SettingSMTPHost              = "smtp_host"
	SettingSMTPPort              = "smtp_port"
	SettingSMTPUser              = "smtp_user"
	SettingSMTPPassword          = "smtp_password"
	SettingSMTPFrom              = "smtp_from"
)

const DefaultDownloadExpiryMinutes = 60

// DefaultSettings are inserted once at boot when the key is missing.
var DefaultSettings = map[string]string{
	SettingStoreName:             "Digital Store",
	SettingBaseURL:               "http://localhost:8080",
	SettingQRISBaseString:        "",
	SettingDownloadExpiryMinutes: "60",
	SettingWebhookAPIKey:         "",
	SettingSMTPHost:              "",
	SettingSMTPPort:              "587",
	SettingSMTPUser:              "",
	SettingSMTPPassword:          "",
	SettingSMTPFrom:              "",
}
