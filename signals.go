package sealant

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for crypto events.
var (
	SignalEncrypt       = capitan.NewSignal("sealant.encrypt", "Payload encryption finished")
	SignalDecrypt       = capitan.NewSignal("sealant.decrypt", "Payload decryption finished")
	SignalFieldStart    = capitan.NewSignal("sealant.field.start", "Field-level operation beginning")
	SignalFieldComplete = capitan.NewSignal("sealant.field.complete", "Field-level operation finished")
)

// Keys for typed event data.
var (
	KeyCredential = capitan.NewStringKey("credential")
	KeyAlgorithm  = capitan.NewStringKey("algorithm")
	KeySize       = capitan.NewIntKey("size")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
	KeyFormat     = capitan.NewStringKey("format")
	KeyOperation  = capitan.NewStringKey("operation")
	KeyPathCount  = capitan.NewIntKey("path_count")
	KeyFieldCount = capitan.NewIntKey("field_count")
)

// emitCrypto emits a completion event for a facade encrypt or decrypt.
func emitCrypto(ctx context.Context, op, credential, algorithm string, size int, duration time.Duration, err error) {
	signal := SignalEncrypt
	if op == "decrypt" {
		signal = SignalDecrypt
	}
	fields := []capitan.Field{
		KeyCredential.Field(credential),
		KeyAlgorithm.Field(algorithm),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, signal, fields...)
	} else {
		capitan.Emit(ctx, signal, fields...)
	}
}
