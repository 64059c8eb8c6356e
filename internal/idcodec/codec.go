// Package idcodec переводит внешние строковые идентификаторы во внутренний
// ObjectID хранилища и обратно.
package idcodec

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

// Decode разбирает 24-символьную hex-строку. Для любой другой строки
// возвращается ошибка, совместимая с domain.ErrInvalidIdentifier.
func Decode(external string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(external)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, external)
	}
	return id, nil
}

// DecodeField работает как Decode, но ошибка дополнительно указывает поле запроса.
func DecodeField(field, external string) (primitive.ObjectID, error) {
	id, err := Decode(external)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", field, err)
	}
	return id, nil
}

// Encode всегда успешен.
func Encode(id primitive.ObjectID) string {
	return id.Hex()
}

// Valid сообщает, можно ли декодировать строку.
func Valid(external string) bool {
	return primitive.IsValidObjectID(external)
}
