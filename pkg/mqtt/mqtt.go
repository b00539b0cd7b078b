// Package mqtt provides MQTT communication capabilities for the bot.
// It publishes domain events and answers request/response queries.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Topic namespaces
const (
	RequestPrefix  = "arcane/request/"
	ResponsePrefix = "arcane/response/"
	EventPrefix    = "arcane/events/"
)

// connectTimeout bounds the initial connection attempt. Reconnection keeps
// going in the background after it.
const connectTimeout = 10 * time.Second

// Request is the envelope of an incoming request
type Request struct {
	CorrelationID string                 `json:"correlationId"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
}

// Response is published on ResponsePrefix/<topic>/<correlationId>
type Response struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client   mqtt.Client
	clientID string
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator creates a new MQTT communicator
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	mc := &MqttCommunicator{clientID: clientID}

	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		logger.Warn("El broker MQTT no responde, se seguirá reintentando", "MQTT")
	} else if token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return mc
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.client != nil && mc.client.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends a message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, jsonData)
	token.Wait()
	return token.Error()
}

// RequestHandler answers the payload of a request
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// On answers every request published under RequestPrefix+requestTopic.
// Wildcards are allowed in requestTopic.
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) {
	pattern := RequestPrefix + requestTopic

	token := mc.client.Subscribe(pattern, 0, func(c mqtt.Client, msg mqtt.Message) {
		responseTopic, response, ok := answer(pattern, msg.Topic(), msg.Payload(), callback)
		if !ok {
			return
		}
		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error respondiendo a %s: %v", msg.Topic(), err), "MQTT")
		}
	})

	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error suscribiendo al tópico %s: %v", pattern, token.Error()), "MQTT")
	}
}

// answer runs callback for one request message and builds the response.
// ok is false when the message is not a request for pattern or cannot be
// decoded.
func answer(pattern, topic string, payload []byte, callback RequestHandler) (string, Response, bool) {
	if !topicMatch(pattern, topic) {
		return "", Response{}, false
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		logger.Warn(fmt.Sprintf("Petición MQTT inválida en %s: %v", topic, err), "MQTT")
		return "", Response{}, false
	}
	if req.CorrelationID == "" {
		logger.Warn("Petición MQTT sin correlationId en "+topic, "MQTT")
		return "", Response{}, false
	}

	name := strings.TrimPrefix(topic, RequestPrefix)
	if req.Payload == nil {
		req.Payload = make(map[string]interface{})
	}
	req.Payload["_topic"] = name

	response := Response{CorrelationID: req.CorrelationID}
	data, err := callback(req.Payload)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}
	return ResponsePrefix + name + "/" + req.CorrelationID, response, true
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	patternLen := len(patternParts)
	topicLen := len(topicParts)

	for i := 0; i < patternLen; i++ {
		// '#' wildcard matches zero or more remaining levels
		if patternParts[i] == "#" {
			return true // # matches everything that follows (including nothing)
		}

		// If we've run out of topic parts but pattern still has parts (not #)
		if i >= topicLen {
			return false
		}

		// '+' matches exactly one topic level
		if patternParts[i] == "+" {
			continue
		}

		// Exact match required
		if patternParts[i] != topicParts[i] {
			return false
		}
	}

	// Pattern exhausted, topic must also be exhausted for a match
	return patternLen == topicLen
}
