package notifyhub

import (
	"encoding/json"
	"log"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
)

// HubService owns the set of connected clients and their topic
// subscriptions. All state lives inside the Run goroutine; connections talk
// to it through the channels.
type HubService struct {
	// Clients by user ID.
	Clients map[string]Client
	// subscriptions by topic, then user ID.
	subscriptions map[string]map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	SubscribeCh  chan Subscription

	Broker  *Broker
	eventCh chan models.Event
}

// NewHubService Constructor
func NewHubService(broker *Broker) *HubService {
	return &HubService{
		Clients:       make(map[string]Client),
		subscriptions: make(map[string]map[string]Client),
		RegisterCh:    make(chan Client),
		UnregisterCh:  make(chan Client),
		SubscribeCh:   make(chan Subscription),
		Broker:        broker,
		eventCh:       make(chan models.Event),
	}
}

// StartBrokerListener starts the goroutine that bridges Redis pub/sub into
// the hub's event channel, so events published by any portal instance reach
// this instance's clients.
func (h *HubService) StartBrokerListener() {
	if h.Broker == nil {
		return
	}
	go func() {
		pubsub := h.Broker.Subscribe()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to decode broker event on %s: %v", msg.Channel, err)
				continue
			}
			if ev.Topic == "" {
				ev.Topic = msg.Channel
			}
			h.eventCh <- ev
		}
	}()
}

// Run is the hub's main dispatcher loop.
func (h *HubService) Run() {
	h.StartBrokerListener()

	for {
		select {
		case client := <-h.RegisterCh:
			h.register(client)
		case client := <-h.UnregisterCh:
			h.unregister(client)
		case sub := <-h.SubscribeCh:
			h.subscribe(sub.Topic, sub.Client)
		case ev := <-h.eventCh:
			h.Dispatch(ev)
		}
	}
}

func (h *HubService) register(client Client) {
	userID := client.GetUserID()
	if old, ok := h.Clients[userID]; ok && old != client {
		h.drop(old)
	}
	h.Clients[userID] = client
	// Every connection implicitly follows its own notification topic.
	h.subscribe(models.UserTopic(userID), client)
	log.Printf("Client connected: %s", userID)
}

func (h *HubService) unregister(client Client) {
	if current, ok := h.Clients[client.GetUserID()]; ok && current == client {
		h.drop(client)
		log.Printf("Client disconnected: %s", client.GetUserID())
	}
}

func (h *HubService) subscribe(topic string, client Client) {
	if _, ok := h.Clients[client.GetUserID()]; !ok {
		return
	}
	if h.subscriptions[topic] == nil {
		h.subscriptions[topic] = make(map[string]Client)
	}
	h.subscriptions[topic][client.GetUserID()] = client
}

// Dispatch delivers an event to every client subscribed to its topic. A
// client that cannot keep up is dropped rather than allowed to stall the
// hub.
func (h *HubService) Dispatch(ev models.Event) {
	for _, client := range h.subscriptions[ev.Topic] {
		select {
		case client.GetSendChannel() <- ev:
		default:
			log.Printf("WARNING: Dropping slow client %s", client.GetUserID())
			h.drop(client)
		}
	}
}

func (h *HubService) drop(client Client) {
	userID := client.GetUserID()
	delete(h.Clients, userID)
	for topic, subs := range h.subscriptions {
		delete(subs, userID)
		if len(subs) == 0 {
			delete(h.subscriptions, topic)
		}
	}
	client.Close()
}
