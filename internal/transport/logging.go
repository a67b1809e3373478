// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	"denoise/internal/log"
)

// LoggingTransport implements the Transport interface by logging each event
// as JSON.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Debug("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the event. Values that cannot be marshalled are logged with %+v.
func (lt *LoggingTransport) Send(data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Infof("progress (%T): %+v", data, data)
		return nil
	}
	log.Infof("progress: %s", jsonData)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
