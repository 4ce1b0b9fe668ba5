package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/dmitrijs2005/authdir/internal/server/models"
)

const recordFormatVersion = 1

var errMalformedRecord = errors.New("malformed cache record")

// encodeRecord lays out a record as
// [version][uint16 BE hash len][hash][uint8 role len][role].
func encodeRecord(u *models.User) ([]byte, error) {
	if len(u.PasswordHash) > math.MaxUint16 {
		return nil, errors.New("password hash too long")
	}
	if len(u.Role) > math.MaxUint8 {
		return nil, errors.New("role too long")
	}

	var buf bytes.Buffer
	buf.Grow(4 + len(u.PasswordHash) + len(u.Role))

	buf.WriteByte(recordFormatVersion)
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(u.PasswordHash))); err != nil {
		return nil, err
	}
	buf.WriteString(u.PasswordHash)
	buf.WriteByte(byte(len(u.Role)))
	buf.WriteString(u.Role)

	return buf.Bytes(), nil
}

func decodeRecord(userName string, data []byte) (*models.User, error) {
	if len(data) < 1 || data[0] != recordFormatVersion {
		return nil, errMalformedRecord
	}
	data = data[1:]

	if len(data) < 2 {
		return nil, errMalformedRecord
	}
	hashLen := int(binary.BigEndian.Uint16(data))
	data = data[2:]
	if len(data) < hashLen {
		return nil, errMalformedRecord
	}
	hash := string(data[:hashLen])
	data = data[hashLen:]

	if len(data) < 1 {
		return nil, errMalformedRecord
	}
	roleLen := int(data[0])
	data = data[1:]
	if len(data) != roleLen {
		return nil, errMalformedRecord
	}
	role := string(data)

	if hash == "" || role == "" {
		return nil, errMalformedRecord
	}

	return &models.User{UserName: userName, PasswordHash: hash, Role: role}, nil
}
