package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/urmzd/voicelink/pkg/device"
	"golang.org/x/sync/errgroup"
)

// ActionRequest is the batch of capability actions requested for one device
type ActionRequest struct {
	ID           string             `json:"id"`
	Capabilities []CapabilityAction `json:"capabilities"`
}

// CapabilityAction is one requested capability change
type CapabilityAction struct {
	Type  device.CapabilityType `json:"type"`
	State device.State          `json:"state"`
}

// ActionState is the outcome of one capability action
type ActionState struct {
	Instance     string              `json:"instance"`
	ActionResult device.ActionResult `json:"action_result"`
}

// CapabilityResult is the reported outcome of one capability action
type CapabilityResult struct {
	Type  device.CapabilityType `json:"type"`
	State ActionState           `json:"state"`
}

// ActionDeviceResult is the action result of one device. A failed device
// carries only its ID and a device-level ActionResult.
type ActionDeviceResult struct {
	ID           string
	Capabilities []CapabilityResult
	ActionResult *device.ActionResult
}

// Failed reports whether the device's actions failed as a whole
func (r ActionDeviceResult) Failed() bool {
	return r.ActionResult != nil
}

func (r ActionDeviceResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			ID           string               `json:"id"`
			ActionResult *device.ActionResult `json:"action_result"`
		}{r.ID, r.ActionResult})
	}

	capabilities := r.Capabilities
	if capabilities == nil {
		capabilities = []CapabilityResult{}
	}

	return json.Marshal(struct {
		ID           string             `json:"id"`
		Capabilities []CapabilityResult `json:"capabilities"`
	}{r.ID, capabilities})
}

// Action applies the requested capability actions to the devices of a user.
//
// Devices are handled concurrently, and so are the capabilities of a device.
// A capability the device does not have is reported as INVALID_ACTION without
// calling any hook. A failing hook turns the whole device into an error entry
// without affecting the others. Unknown ids are left out. Entries follow the
// request order, while capabilities inside an entry follow completion order.
func (s *Service) Action(ctx context.Context, userID string, requests []ActionRequest) ([]ActionDeviceResult, error) {
	devices, err := s.Devices(ctx, userID)
	if err != nil {
		return nil, err
	}

	type target struct {
		device  *device.Device
		request ActionRequest
	}

	targets := make([]target, 0, len(requests))
	for _, req := range requests {
		if d := device.FindByID(devices, req.ID); d != nil {
			targets = append(targets, target{device: d, request: req})
		}
	}

	results := make([]ActionDeviceResult, len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.actDevice(ctx, t.device, t.request.Capabilities)
		}()
	}
	wg.Wait()

	return results, nil
}

func (s *Service) actDevice(ctx context.Context, d *device.Device, actions []CapabilityAction) ActionDeviceResult {
	logger := s.logger.With().Str("device", d.Name).Str("device_id", d.ID).Logger()
	logger.Debug().Msg("Handling device")

	result := ActionDeviceResult{ID: d.ID, Capabilities: []CapabilityResult{}}
	var mu sync.Mutex
	var g errgroup.Group

	add := func(r CapabilityResult) {
		mu.Lock()
		result.Capabilities = append(result.Capabilities, r)
		mu.Unlock()
	}

	for _, action := range actions {
		g.Go(func() error {
			c := device.Resolve(d, device.CapabilityRef{Type: action.Type, Instance: action.State.Instance})
			if c == nil || c.OnAction == nil {
				add(invalidAction(action))
				return nil
			}

			return guard(func() error {
				outcome, err := c.OnAction(ctx, action.State)
				if err != nil || outcome == nil {
					return err
				}

				instance := outcome.Instance
				if instance == "" {
					instance = action.State.Instance
				}

				logger.Debug().
					Str("capability", string(c.Type)).
					Str("instance", instance).
					Str("status", outcome.ActionResult.Status).
					Msg("Handled capability")

				add(CapabilityResult{
					Type:  c.Type,
					State: ActionState{Instance: instance, ActionResult: outcome.ActionResult},
				})
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		err = fmt.Errorf("%w: %s: %w", device.ErrDeviceAction, d.ID, err)
		code := device.CodeOf(err)

		logger.Error().Err(err).Str("error_code", string(code)).Msg("Device action error")

		return ActionDeviceResult{
			ID:           d.ID,
			ActionResult: &device.ActionResult{Status: device.StatusError, ErrorCode: code},
		}
	}

	return result
}

func invalidAction(action CapabilityAction) CapabilityResult {
	return CapabilityResult{
		Type: action.Type,
		State: ActionState{
			Instance: action.State.Instance,
			ActionResult: device.ActionResult{
				Status:    device.StatusError,
				ErrorCode: device.CodeInvalidAction,
			},
		},
	}
}
