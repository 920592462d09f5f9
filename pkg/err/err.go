package errprocess

import (
	"errors"
	"net/http"

	"video_audio_service/pkg/logger"
)

// Kind 錯誤分類
type Kind int

const (
	// KindInternal unexpected store/codec/transport fault
	KindInternal Kind = iota
	// KindUnauthorized missing/invalid/expired credentials or token
	KindUnauthorized
	// KindConflict duplicate registration
	KindConflict
	// KindBadRequest malformed caller input
	KindBadRequest
	// KindNotFound requested blob does not exist
	KindNotFound
	// KindServiceUnavailable broker or auth service unreachable
	KindServiceUnavailable
	// KindPoisonMessage queue payload that cannot be parsed or is missing required fields
	KindPoisonMessage
)

// Error error with kind
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// New 建立帶分類的錯誤並記錄
func New(kind Kind, msg string) error {
	logger.Log.Error(msg)
	return &Error{Kind: kind, Msg: msg}
}

// Wrap 保留分類，外層只記錄，不覆蓋原 Kind
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	logger.Log.Error(msg + ": " + err.Error())
	return &Error{Kind: kind, Msg: msg}
}

// KindOf 取出錯誤分類，非 *Error 視為 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus 分類對應的 HTTP status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
