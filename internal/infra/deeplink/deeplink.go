package deeplink

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultQRSize сторона PNG в пикселях
const DefaultQRSize = 256

// Link ссылка, открывающая бота сразу с /start <publicID>.
// Без имени бота возвращает команду, которую можно отправить вручную.
func Link(botUsername, publicID string) string {
	botUsername = strings.TrimPrefix(strings.TrimSpace(botUsername), "@")
	if botUsername == "" {
		return "/start " + publicID
	}
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, publicID)
}

// QRCode PNG с QR-кодом ссылки
func QRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
