package remote

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"anddesk/desk/model"
	"anddesk/hal"
)

// MQTT publishes intents to <prefix>/intent/<name> and feeds documents
// arriving on <prefix>/data/<bucket> into the store. Publishes are QoS 0
// and never waited on.
type MQTT struct {
	client paho.Client
	prefix string
	store  *model.Store
	log    hal.Logger
}

// optionsFromURL splits an mqtt:// URL into client options plus the
// topic prefix carried in the path.
func optionsFromURL(brokerURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, "", err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	prefix := strings.Trim(u.Path, "/")
	if prefix == "" {
		prefix = "anddesk"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if id := u.Query().Get("client-id"); id != "" {
		opts.SetClientID(id)
	}
	return opts, prefix, nil
}

// Dial connects to the broker and subscribes the data topics. The
// subscription handler runs on the client's goroutine and only touches
// the store.
func Dial(brokerURL string, store *model.Store, log hal.Logger) (*MQTT, error) {
	opts, prefix, err := optionsFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("remote: broker url: %w", err)
	}

	m := &MQTT{prefix: prefix, store: store, log: log}
	opts.SetOnConnectHandler(func(c paho.Client) {
		log.WriteLineString("remote: connected")
		c.Subscribe(prefix+"/data/#", 0, m.onData)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.WriteLineString("remote: connection lost: " + err.Error())
	})

	m.client = paho.NewClient(opts)
	if tok := m.client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("remote: connect: %w", tok.Error())
	}
	return m, nil
}

// Send publishes the intent and returns immediately.
func (m *MQTT) Send(in Intent) {
	m.client.Publish(m.prefix+"/intent/"+string(in), 0, false, []byte{})
}

// Close drops the broker connection.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

func (m *MQTT) onData(_ paho.Client, msg paho.Message) {
	bucket := strings.TrimPrefix(msg.Topic(), m.prefix+"/data/")
	if err := m.apply(bucket, msg.Payload()); err != nil {
		m.log.WriteLineString("remote: " + bucket + ": " + err.Error())
	}
}

// apply decodes one data document into its snapshot bucket. Unknown
// buckets are ignored so the server can grow without breaking old
// firmware.
func (m *MQTT) apply(bucket string, payload []byte) error {
	switch bucket {
	case "activities":
		var v []model.Activity
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) { s.Activities = v })
	case "weather":
		var v model.Weather
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) { s.Weather = v })
	case "events":
		var v []model.CalendarEvent
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) { s.Events = v })
	case "reminders":
		var v []string
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) { s.Reminders = v })
	case "emails":
		var v struct {
			Emails  []model.Email `json:"emails"`
			Unread  int           `json:"unread"`
			Summary string        `json:"summary"`
		}
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) {
			s.Emails = v.Emails
			s.Unread = v.Unread
			s.EmailSummary = v.Summary
		})
	case "deck":
		var v model.HostStats
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) {
			s.Deck = v
			s.DeckOnline = true
		})
	case "server":
		var v model.HostStats
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) {
			s.Server = v
			s.ServerOnline = true
		})
	case "temp_files":
		var v model.TempFiles
		if err := json.Unmarshal(payload, &v); err != nil {
			return err
		}
		m.store.Update(func(s *model.Snapshot) { s.TempInfo = v })
	}
	return nil
}
