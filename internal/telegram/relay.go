// Package telegram is an optional delivery channel for portal
// notifications. A citizen links their Telegram chat by messaging the bot
// with their account id; afterwards every notification published to their
// user topic is relayed to the chat. The lifecycle engine knows nothing
// about this — the relay is just another subscriber of the broker.
package telegram

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/models"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/notifyhub"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RelayService bridges the notification broker to the Telegram Bot API.
type RelayService struct {
	BotAPI  *tgbotapi.BotAPI
	Storage storage.Storage
	Broker  *notifyhub.Broker
}

// NewRelayService creates the relay. Returns an error when the token is
// rejected by Telegram.
func NewRelayService(token string, s storage.Storage, broker *notifyhub.Broker) (*RelayService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("Telegram relay authorized on account %s", bot.Self.UserName)

	return &RelayService{BotAPI: bot, Storage: s, Broker: broker}, nil
}

// Run starts the broker listener and then blocks on the Telegram update
// loop that handles chat linking.
func (s *RelayService) Run() {
	go s.listenEvents()
	s.listenUpdates()
}

// notificationEnvelope is the slice of the wire event the relay cares
// about.
type notificationEnvelope struct {
	Name string              `json:"event"`
	Data models.Notification `json:"data"`
}

func (s *RelayService) listenEvents() {
	pubsub := s.Broker.SubscribeUserTopics()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var ev notificationEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("ERROR: Failed to decode event on %s: %v", msg.Channel, err)
			continue
		}
		if ev.Name != models.EventNotification {
			continue
		}

		userID := strings.TrimPrefix(msg.Channel, "user_")
		user, err := s.Storage.GetUserByID(userID)
		if err != nil || user.TelegramChatID == "" {
			continue
		}
		chatID, err := strconv.ParseInt(user.TelegramChatID, 10, 64)
		if err != nil {
			continue
		}

		text := ev.Data.Message
		if ev.Data.ComplaintID != "" {
			text = fmt.Sprintf("[%s] %s", ev.Data.ComplaintID, ev.Data.Message)
		}
		if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			log.Printf("ERROR: Failed to relay notification to chat %d: %v", chatID, err)
		}
	}
}

func (s *RelayService) listenUpdates() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	for update := range s.BotAPI.GetUpdatesChan(u) {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		chatID := update.Message.Chat.ID
		switch update.Message.Command() {
		case "start":
			s.linkChat(chatID, strings.TrimSpace(update.Message.CommandArguments()))
		case "stop":
			s.unlinkChat(chatID)
		}
	}
}

func (s *RelayService) linkChat(chatID int64, accountID string) {
	if accountID == "" {
		s.reply(chatID, "Send /start <account id> to link your ResolveX account.")
		return
	}
	user, err := s.Storage.GetUserByID(accountID)
	if err != nil {
		s.reply(chatID, "No ResolveX account found for that id.")
		return
	}

	user.TelegramChatID = strconv.FormatInt(chatID, 10)
	if err := s.Storage.SaveUser(user); err != nil {
		log.Printf("ERROR: Failed to link chat %d to user %s: %v", chatID, user.ID, err)
		s.reply(chatID, "Linking failed, please try again later.")
		return
	}
	s.reply(chatID, fmt.Sprintf("Linked to %s. You will now receive complaint notifications here.", user.Email))
}

func (s *RelayService) unlinkChat(chatID int64) {
	user, err := s.Storage.GetUserByTelegramChat(strconv.FormatInt(chatID, 10))
	if err != nil {
		s.reply(chatID, "This chat is not linked to any account.")
		return
	}
	user.TelegramChatID = ""
	if err := s.Storage.SaveUser(user); err != nil {
		log.Printf("ERROR: Failed to unlink chat %d: %v", chatID, err)
		return
	}
	s.reply(chatID, "Notifications disabled for this chat.")
}

func (s *RelayService) reply(chatID int64, text string) {
	if _, err := s.BotAPI.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("ERROR: Failed to send reply to chat %d: %v", chatID, err)
	}
}
