package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/athenaeum/authgate/label"
)

const sessionFormatVersionV1 = 1

// Encode serializes s into the compact binary v1 layout:
// version byte, length-prefixed username, 16-bit label mask, created-at and
// expires-at as big-endian int64 Unix seconds. SessionID is the Redis key and
// is not part of the payload.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionV1)

	if len(s.Username) == 0 {
		return nil, errors.New("username empty")
	}
	if len(s.Username) > 255 {
		return nil, errors.New("username too long")
	}
	buf.WriteByte(byte(len(s.Username)))
	buf.WriteString(s.Username)

	if err := binary.Write(&buf, binary.BigEndian, s.Labels.Raw()); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a v1 session blob. The caller fills in SessionID from the key.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if userLen == 0 {
		return nil, errors.New("username empty")
	}
	username := make([]byte, userLen)
	if _, err := io.ReadFull(reader, username); err != nil {
		return nil, err
	}
	s.Username = string(username)

	var rawLabels uint16
	if err := binary.Read(reader, binary.BigEndian, &rawLabels); err != nil {
		return nil, err
	}
	s.Labels = label.FromRaw(rawLabels)

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, err
	}

	return s, nil
}
