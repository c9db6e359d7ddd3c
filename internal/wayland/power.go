package wayland

import (
	"github.com/google/uuid"

	"dpms/internal/dpmserr"
	"dpms/internal/logger"
)

// setOutputPower drives one output to the requested power state via a
// transient zwlr_output_power_v1 object: get_output_power, set_mode,
// one roundtrip to observe a possible "failed" event, then destroy
// (the set_power operation). Each call is tagged with a
// request id so a --log-level debug session can correlate the set_mode
// request with the roundtrip that settles it, even when a caller
// drives several outputs in one invocation.
func (cl *client) setOutputPower(outputObjectID uint32, mode int32) error {
	if !cl.powerManagerFound {
		return dpmserr.NewProtocolNotSupported()
	}

	reqID := uuid.New().String()
	logger.Debug().Str("request_id", reqID).Uint32("output", outputObjectID).Int32("mode", mode).Msg("wayland set_power request")

	powerID := cl.allocID()
	if err := cl.c.send(cl.powerManagerObjectID, powerManagerReqGetOutputPower,
		concat(encodeUint32(powerID), encodeUint32(outputObjectID))); err != nil {
		return dpmserr.NewWaylandError("get_output_power", err)
	}

	if err := cl.c.send(powerID, powerReqSetMode, encodeInt32(mode)); err != nil {
		return dpmserr.NewWaylandError("set_mode", err)
	}

	var failed bool
	err := cl.roundtrip(func(m message) (bool, error) {
		if m.ObjectID != powerID {
			return false, nil
		}
		if m.Opcode == powerEvFailed {
			failed = true
		}
		return true, nil
	})

	_ = cl.c.send(powerID, powerReqDestroy, nil)

	logger.Debug().Str("request_id", reqID).Bool("failed", failed).AnErr("roundtrip_err", err).Msg("wayland set_power settled")

	if err != nil {
		return err
	}
	if failed {
		return dpmserr.NewProtocolNotSupported()
	}
	return nil
}

// getOutputPower observes one output's current power mode via a
// transient zwlr_output_power_v1 object: get_output_power, roundtrip
// to capture the "mode" event, destroy (the get_power
// operation). If the compositor never sends a mode event (e.g. the
// extension silently ignores the request) the output is reported On,
// matching list_displays' "unknown-but-visible" default.
func (cl *client) getOutputPower(outputObjectID uint32) (int32, error) {
	if !cl.powerManagerFound {
		return powerModeOn, nil
	}

	reqID := uuid.New().String()
	logger.Debug().Str("request_id", reqID).Uint32("output", outputObjectID).Msg("wayland get_power request")

	powerID := cl.allocID()
	if err := cl.c.send(cl.powerManagerObjectID, powerManagerReqGetOutputPower,
		concat(encodeUint32(powerID), encodeUint32(outputObjectID))); err != nil {
		return 0, dpmserr.NewWaylandError("get_output_power", err)
	}

	mode := powerModeOn
	var failed bool
	err := cl.roundtrip(func(m message) (bool, error) {
		if m.ObjectID != powerID {
			return false, nil
		}
		switch m.Opcode {
		case powerEvMode:
			v, _, err := decodeInt32(m.Payload)
			if err == nil {
				mode = v
			}
		case powerEvFailed:
			failed = true
		}
		return true, nil
	})

	_ = cl.c.send(powerID, powerReqDestroy, nil)

	logger.Debug().Str("request_id", reqID).Int32("mode", mode).Bool("failed", failed).AnErr("roundtrip_err", err).Msg("wayland get_power settled")

	if err != nil {
		return 0, err
	}
	if failed {
		return 0, dpmserr.NewProtocolNotSupported()
	}
	return mode, nil
}
