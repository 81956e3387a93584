package models

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Resume is an analysis record produced by the backend.
type Resume struct {
	ID            int64      `json:"id" msgpack:"id"`
	CandidateName string     `json:"candidateName,omitempty" msgpack:"candidateName,omitempty"`
	Email         string     `json:"email,omitempty" msgpack:"email,omitempty"`
	Phone         string     `json:"phone,omitempty" msgpack:"phone,omitempty"`
	Skills        string     `json:"skills,omitempty" msgpack:"skills,omitempty"`
	Experience    string     `json:"experience,omitempty" msgpack:"experience,omitempty"`
	FileName      string     `json:"fileName,omitempty" msgpack:"fileName,omitempty"`
	FileType      string     `json:"fileType,omitempty" msgpack:"fileType,omitempty"`
	Source        string     `json:"source,omitempty" msgpack:"source,omitempty"`
	MatchScore    *float64   `json:"matchScore,omitempty" msgpack:"matchScore,omitempty"`
	MatchAnalysis string     `json:"matchAnalysis,omitempty" msgpack:"matchAnalysis,omitempty"`
	UploadedAt    *Timestamp `json:"uploadedAt,omitempty" msgpack:"uploadedAt,omitempty"`
	AnalyzedAt    *Timestamp `json:"analyzedAt,omitempty" msgpack:"analyzedAt,omitempty"`
}

// Timestamp accepts the backend's zone-less local date-times
// ("2024-05-01T10:20:30.123") as well as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Value: s, Message: ": timestamp must be a JSON string"}
	}
	s = s[1 : len(s)-1]

	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// EncodeMsgpack writes the time with the msgpack timestamp extension.
func (t Timestamp) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeTime(t.Time)
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (t *Timestamp) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, err := dec.DecodeTime()
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}
