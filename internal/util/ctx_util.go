package util

import (
	"context"

	"github.com/RoyceAzure/lab/ordercenter/internal/constants"
	"github.com/RoyceAzure/rj/api/token"
)

func GetTokenPayloadFromContext[T token.UserIDConstraint](ctx context.Context) *token.Payload[T] {
	var tokenPayload *token.Payload[T]

	if v := ctx.Value(constants.AuthorizationPayloadKey); v != nil {
		tokenPayload = v.(*token.Payload[T])
	}

	return tokenPayload
}

func GetRequestIDFromContext(ctx context.Context) string {
	requestID := "unknown"
	if v := ctx.Value(constants.RequestIDKey); v != nil {
		requestID = v.(string)
	}
	return requestID
}
