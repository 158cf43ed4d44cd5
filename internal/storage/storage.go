// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"streambot/datastore"
)

const playHistoryLimit int = 20

type Storage struct {
	ds *datastore.DataStore
}

// PlayHistoryRecord is one completed or attempted playback.
type PlayHistoryRecord struct {
	Input    string    `json:"input"`
	Title    string    `json:"title"`
	Kind     string    `json:"kind"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Outcome  string    `json:"outcome"`
	Datetime time.Time `json:"datetime"`
}

// Record holds everything persisted per guild.
type Record struct {
	CommandChannelID string              `json:"command_channel_id"`
	VoiceChannelID   string              `json:"voice_channel_id"`
	StatusChannelID  string              `json:"status_channel_id"`
	PreferredHW      string              `json:"preferred_hw"`
	PlayHistory      []PlayHistoryRecord `json:"play_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Helper function to get or create a Record for a guild
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{PlayHistory: []PlayHistoryRecord{}}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	err = json.Unmarshal(jsonData, &record)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if len(record.PlayHistory) > playHistoryLimit {
		record.PlayHistory = record.PlayHistory[len(record.PlayHistory)-playHistoryLimit:]
	}

	return &record, nil
}

// SetChannels binds the command, voice and status channels for a guild.
// Empty values leave the existing binding untouched.
func (s *Storage) SetChannels(guildID, commandID, voiceID, statusID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	if commandID != "" {
		record.CommandChannelID = commandID
	}
	if voiceID != "" {
		record.VoiceChannelID = voiceID
	}
	if statusID != "" {
		record.StatusChannelID = statusID
	}
	s.ds.Add(guildID, record)
	return nil
}

// GetChannels returns the bound command, voice and status channels.
func (s *Storage) GetChannels(guildID string) (string, string, string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", "", "", err
	}
	return record.CommandChannelID, record.VoiceChannelID, record.StatusChannelID, nil
}

func (s *Storage) SetPreferredHW(guildID, device string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.PreferredHW = device
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) GetPreferredHW(guildID string) (string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.PreferredHW, nil
}

// AppendPlayHistory records a playback attempt for a guild.
func (s *Storage) AppendPlayHistory(guildID string, rec PlayHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.PlayHistory = append(record.PlayHistory, rec)
	s.ds.Add(guildID, record)
	return nil
}

func (s *Storage) FetchPlayHistory(guildID string) ([]PlayHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.PlayHistory, nil
}
