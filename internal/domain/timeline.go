package domain

import "time"

// TimelineEvent описывает событие в жизненном цикле заказа
// (создание, смена статуса). Хранится как append-only журнал.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
