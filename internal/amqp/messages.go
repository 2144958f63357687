package amqp

import (
	"encoding/json"
	"time"
)

// ChartRefreshMessage signals that the warehouse data behind a chart
// changed and any cached series window for it must be dropped. An empty
// ChartID means every chart.
type ChartRefreshMessage struct {
	ChartID   string    `json:"chart_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChartRefreshMessage(chartID string) *ChartRefreshMessage {
	return &ChartRefreshMessage{
		ChartID:   chartID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChartRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChartRefreshMessageFromJSON creates a message from JSON bytes
func ChartRefreshMessageFromJSON(data []byte) (*ChartRefreshMessage, error) {
	var msg ChartRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
