package menutool

import (
	"resto-chatbot/internal/common/database"
)

// Envelope statuses.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

const (
	MsgNotFound   = "Tidak ada menu yang sesuai dengan kriteria"
	MsgLookupFail = "Terjadi kesalahan saat mengambil data menu: "
)

// Envelope is the tagged lookup result. Callers must branch on Status
// before reading Data.
type Envelope struct {
	Status  string         `json:"status"`
	Count   int            `json:"count,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    []database.Row `json:"data"`
}

func successEnvelope(rows []database.Row) Envelope {
	if len(rows) == 0 {
		return notFoundEnvelope()
	}
	return Envelope{Status: StatusSuccess, Count: len(rows), Data: rows}
}

func notFoundEnvelope() Envelope {
	return Envelope{Status: StatusNotFound, Message: MsgNotFound, Data: []database.Row{}}
}

func errorEnvelope(err error) Envelope {
	return Envelope{Status: StatusError, Message: MsgLookupFail + err.Error(), Data: []database.Row{}}
}
