package notify

import (
	"context"
	"log"
)

// Sender — узкий интерфейс доставки наружу: отправка OTP-кода и уведомление
// пользователя. SMS/email/push-провайдеры подключаются за этим интерфейсом,
// ядро о них ничего не знает.
type Sender interface {
	SendOTP(ctx context.Context, destination, code string) error
	Notify(ctx context.Context, userID uint, title, body string) error
}

// LogSender пишет доставку в лог вместо реальной отправки.
type LogSender struct{}

func (s *LogSender) SendOTP(ctx context.Context, destination, code string) error {
	log.Printf("OTP для %s: %s", destination, code)
	return nil
}

func (s *LogSender) Notify(ctx context.Context, userID uint, title, body string) error {
	log.Printf("Уведомление пользователю %d: %s — %s", userID, title, body)
	return nil
}

// Default — отправитель по умолчанию; main может заменить его реальным.
var Default Sender = &LogSender{}
