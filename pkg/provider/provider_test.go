package provider

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/voicelink/pkg/device"
)

func staticSource(devices ...device.Device) device.Source {
	return device.SourceFunc(func(context.Context, string) ([]device.Device, error) {
		return devices, nil
	})
}

func newService(devices ...device.Device) *Service {
	return New(staticSource(devices...), Options{Logger: zerolog.Nop()})
}

func onOff(t *testing.T, query device.QueryFunc, action device.ActionFunc) *device.Capability {
	t.Helper()
	c, err := device.NewOnOff(device.CapabilityOptions{OnQuery: query, OnAction: action})
	require.NoError(t, err)
	return c
}

func temperature(t *testing.T, value float64) *device.Property {
	t.Helper()
	p, err := device.NewFloat(device.PropertyOptions{
		Parameters: &device.Parameters{Instance: "temperature", Unit: "unit.temperature.celsius"},
		OnQuery: func(context.Context, any) (*device.State, error) {
			return &device.State{Instance: "temperature", Value: value}, nil
		},
	})
	require.NoError(t, err)
	return p
}

func stateOn(on bool) device.QueryFunc {
	return func(context.Context, any) (*device.State, error) {
		return &device.State{Instance: "on", Value: on}, nil
	}
}

func brightness(t *testing.T, query device.QueryFunc, action device.ActionFunc) *device.Capability {
	t.Helper()
	c, err := device.NewRange(device.CapabilityOptions{
		Parameters: &device.Parameters{Instance: "brightness", Range: &device.Range{Min: 1, Max: 100}},
		OnQuery:    query,
		OnAction:   action,
	})
	require.NoError(t, err)
	return c
}

// barrier returns a wait func that only returns once n callers are waiting.
// A caller left alone for too long gets an error.
func barrier(n int) func() error {
	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	return func() error {
		arrived.Done()
		select {
		case <-release:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("waited alone")
		}
	}
}

func TestService_Devices(t *testing.T) {
	svc := newService(
		device.Device{Name: "Lamp", Type: "devices.types.light"},
		device.Device{Name: "Broken"},
		device.Device{Name: "Socket", Type: "devices.types.socket", Capabilities: []*device.Capability{onOff(t, nil, nil)}},
	)

	devices, err := svc.Devices(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "1", devices[0].ID)
	assert.Equal(t, "Socket", devices[0].Name)
}

func TestService_DevicesSourceError(t *testing.T) {
	boom := errors.New("backend down")
	svc := New(device.SourceFunc(func(context.Context, string) ([]device.Device, error) {
		return nil, boom
	}), Options{Logger: zerolog.Nop()})

	_, err := svc.Devices(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)

	_, err = svc.Query(context.Background(), "alice", []string{"1"})
	assert.ErrorIs(t, err, boom)

	_, err = svc.Action(context.Background(), "alice", nil)
	assert.ErrorIs(t, err, boom)
}

func TestService_DevicesStrict(t *testing.T) {
	svc := New(staticSource(device.Device{Name: "Broken"}), Options{Strict: true, Logger: zerolog.Nop()})

	_, err := svc.Devices(context.Background(), "alice")
	assert.ErrorIs(t, err, device.ErrDeviceValidation)
}

func TestQuery_FailureIsolation(t *testing.T) {
	svc := newService(
		device.Device{ID: "a", Name: "A", Type: "devices.types.light", Capabilities: []*device.Capability{onOff(t, stateOn(true), nil)}},
		device.Device{ID: "b", Name: "B", Type: "devices.types.light", Capabilities: []*device.Capability{
			onOff(t, func(context.Context, any) (*device.State, error) {
				return nil, device.NewCodeError(device.CodeDeviceUnreachable, errors.New("offline"))
			}, nil),
		}},
		device.Device{ID: "c", Name: "C", Type: "devices.types.sensor", Properties: []*device.Property{temperature(t, 21.5)}},
	)

	states, err := svc.Query(context.Background(), "alice", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, states, 3)

	assert.Equal(t, "a", states[0].ID)
	assert.False(t, states[0].Failed())
	require.Len(t, states[0].Capabilities, 1)
	assert.Equal(t, true, states[0].Capabilities[0].State.Value)
	assert.Empty(t, states[0].Properties)

	assert.Equal(t, DeviceState{ID: "b", ErrorCode: device.CodeDeviceUnreachable}, states[1])

	assert.Equal(t, "c", states[2].ID)
	assert.Empty(t, states[2].Capabilities)
	require.Len(t, states[2].Properties, 1)
	assert.Equal(t, 21.5, states[2].Properties[0].State.Value)
}

func TestQuery_OrderAndMissingIDs(t *testing.T) {
	svc := newService(
		device.Device{Name: "One", Type: "t", Capabilities: []*device.Capability{onOff(t, stateOn(true), nil)}},
		device.Device{Name: "Two", Type: "t", Capabilities: []*device.Capability{onOff(t, stateOn(false), nil)}},
	)

	states, err := svc.Query(context.Background(), "alice", []string{"2", "missing", "1"})
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "2", states[0].ID)
	assert.Equal(t, "1", states[1].ID)
}

func TestQuery_GlobalQuery(t *testing.T) {
	var calls atomic.Int32

	read := func(ctx context.Context, global any) (*device.State, error) {
		state := global.(map[string]any)
		return &device.State{Instance: "on", Value: state["on"]}, nil
	}
	svc := newService(device.Device{
		Name: "Lamp",
		Type: "devices.types.light",
		GlobalQuery: func(context.Context) (any, error) {
			calls.Add(1)
			return map[string]any{"on": true}, nil
		},
		Capabilities: []*device.Capability{onOff(t, read, nil)},
	})

	states, err := svc.Query(context.Background(), "alice", []string{"1"})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, true, states[0].Capabilities[0].State.Value)
}

func TestQuery_GlobalQueryError(t *testing.T) {
	var queried atomic.Bool
	svc := newService(device.Device{
		Name: "Lamp",
		Type: "devices.types.light",
		GlobalQuery: func(context.Context) (any, error) {
			return nil, errors.New("no state")
		},
		Capabilities: []*device.Capability{onOff(t, func(context.Context, any) (*device.State, error) {
			queried.Store(true)
			return nil, nil
		}, nil)},
	})

	states, err := svc.Query(context.Background(), "alice", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, []DeviceState{{ID: "1", ErrorCode: device.CodeInternalError}}, states)
	assert.False(t, queried.Load())
}

func TestQuery_NilStateExcluded(t *testing.T) {
	svc := newService(device.Device{
		Name: "Lamp",
		Type: "devices.types.light",
		Capabilities: []*device.Capability{
			onOff(t, func(context.Context, any) (*device.State, error) { return nil, nil }, nil),
			onOff(t, nil, nil),
		},
	})

	states, err := svc.Query(context.Background(), "alice", []string{"1"})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.False(t, states[0].Failed())
	assert.Empty(t, states[0].Capabilities)
}

func TestQuery_PanicRecovered(t *testing.T) {
	svc := newService(device.Device{
		Name: "Lamp",
		Type: "devices.types.light",
		Capabilities: []*device.Capability{onOff(t, func(context.Context, any) (*device.State, error) {
			panic("driver bug")
		}, nil)},
	})

	states, err := svc.Query(context.Background(), "alice", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, []DeviceState{{ID: "1", ErrorCode: device.CodeInternalError}}, states)
}

func TestQuery_DevicesConcurrent(t *testing.T) {
	wait := barrier(2)
	global := func(context.Context) (any, error) {
		if err := wait(); err != nil {
			return nil, err
		}
		return map[string]any{}, nil
	}
	svc := newService(
		device.Device{ID: "a", Name: "A", Type: "t", GlobalQuery: global, Capabilities: []*device.Capability{onOff(t, stateOn(true), nil)}},
		device.Device{ID: "b", Name: "B", Type: "t", GlobalQuery: global, Capabilities: []*device.Capability{onOff(t, stateOn(false), nil)}},
	)

	states, err := svc.Query(context.Background(), "alice", []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, s := range states {
		assert.False(t, s.Failed(), s.ID)
	}
}

func TestQuery_HooksConcurrent(t *testing.T) {
	wait := barrier(3)
	svc := newService(device.Device{
		Name: "Lamp",
		Type: "devices.types.light",
		Capabilities: []*device.Capability{
			onOff(t, func(context.Context, any) (*device.State, error) {
				if err := wait(); err != nil {
					return nil, err
				}
				return &device.State{Instance: "on", Value: true}, nil
			}, nil),
			brightness(t, func(context.Context, any) (*device.State, error) {
				if err := wait(); err != nil {
					return nil, err
				}
				return &device.State{Instance: "brightness", Value: 40}, nil
			}, nil),
		},
		Properties: []*device.Property{func() *device.Property {
			p, err := device.NewFloat(device.PropertyOptions{
				Parameters: &device.Parameters{Instance: "temperature"},
				OnQuery: func(context.Context, any) (*device.State, error) {
					if err := wait(); err != nil {
						return nil, err
					}
					return &device.State{Instance: "temperature", Value: 20.0}, nil
				},
			})
			require.NoError(t, err)
			return p
		}()},
	})

	states, err := svc.Query(context.Background(), "alice", []string{"1"})
	require.NoError(t, err)
	require.Len(t, states, 1)
	require.False(t, states[0].Failed())
	assert.Len(t, states[0].Capabilities, 2)
	assert.Len(t, states[0].Properties, 1)
}

func TestAction_Concurrent(t *testing.T) {
	// Three hooks spread over two devices: all of them must be in flight
	// together for any to return.
	wait := barrier(3)
	act := func(_ context.Context, s device.State) (*device.ActionOutcome, error) {
		if err := wait(); err != nil {
			return nil, err
		}
		return device.Done(s.Instance), nil
	}
	svc := newService(
		device.Device{ID: "lamp", Name: "Lamp", Type: "t", Capabilities: []*device.Capability{onOff(t, nil, act), brightness(t, nil, act)}},
		device.Device{ID: "plug", Name: "Plug", Type: "t", Capabilities: []*device.Capability{onOff(t, nil, act)}},
	)

	turnOn := CapabilityAction{Type: device.CapabilityOnOff, State: device.State{Instance: "on", Value: true}}
	dim := CapabilityAction{Type: device.CapabilityRange, State: device.State{Instance: "brightness", Value: 30}}
	results, err := svc.Action(context.Background(), "alice", []ActionRequest{
		{ID: "lamp", Capabilities: []CapabilityAction{turnOn, dim}},
		{ID: "plug", Capabilities: []CapabilityAction{turnOn}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Failed())
	assert.Len(t, results[0].Capabilities, 2)
	assert.False(t, results[1].Failed())
	assert.Len(t, results[1].Capabilities, 1)
}

func TestAction_NilOutcomeExcluded(t *testing.T) {
	silent := onOff(t, nil, func(context.Context, device.State) (*device.ActionOutcome, error) {
		return nil, nil
	})
	dimmer := brightness(t, nil, func(_ context.Context, s device.State) (*device.ActionOutcome, error) {
		return device.Done(s.Instance), nil
	})
	svc := newService(device.Device{Name: "Lamp", Type: "t", Capabilities: []*device.Capability{silent, dimmer}})

	results, err := svc.Action(context.Background(), "alice", []ActionRequest{{
		ID: "1",
		Capabilities: []CapabilityAction{
			{Type: device.CapabilityOnOff, State: device.State{Instance: "on", Value: true}},
			{Type: device.CapabilityRange, State: device.State{Instance: "brightness", Value: 30}},
		},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Failed())
	assert.Equal(t, []CapabilityResult{{
		Type:  device.CapabilityRange,
		State: ActionState{Instance: "brightness", ActionResult: device.ActionResult{Status: device.StatusDone}},
	}}, results[0].Capabilities)
}

func TestAction_UnresolvedCapability(t *testing.T) {
	var called atomic.Bool
	mode, err := device.NewMode(device.CapabilityOptions{
		Parameters: &device.Parameters{Instance: "fan_speed"},
		OnAction: func(context.Context, device.State) (*device.ActionOutcome, error) {
			called.Store(true)
			return nil, nil
		},
	})
	require.NoError(t, err)

	svc := newService(device.Device{Name: "Fan", Type: "devices.types.thermostat.ac", Capabilities: []*device.Capability{mode}})

	results, err := svc.Action(context.Background(), "alice", []ActionRequest{{
		ID: "1",
		Capabilities: []CapabilityAction{
			{Type: device.CapabilityMode, State: device.State{Instance: "thermostat", Value: "cool"}},
		},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, called.Load())
	assert.Equal(t, []CapabilityResult{{
		Type: device.CapabilityMode,
		State: ActionState{
			Instance:     "thermostat",
			ActionResult: device.ActionResult{Status: device.StatusError, ErrorCode: device.CodeInvalidAction},
		},
	}}, results[0].Capabilities)
}

func TestAction_ResolvedWithoutHook(t *testing.T) {
	svc := newService(device.Device{Name: "Lamp", Type: "devices.types.light", Capabilities: []*device.Capability{onOff(t, stateOn(true), nil)}})

	results, err := svc.Action(context.Background(), "alice", []ActionRequest{{
		ID:           "1",
		Capabilities: []CapabilityAction{{Type: device.CapabilityOnOff, State: device.State{Instance: "on", Value: true}}},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Capabilities, 1)
	assert.Equal(t, device.CodeInvalidAction, results[0].Capabilities[0].State.ActionResult.ErrorCode)
}

func TestAction_FailureIsolation(t *testing.T) {
	var applied atomic.Value
	ok := onOff(t, nil, func(_ context.Context, s device.State) (*device.ActionOutcome, error) {
		applied.Store(s.Value)
		return device.Done("on"), nil
	})
	failing := onOff(t, nil, func(context.Context, device.State) (*device.ActionOutcome, error) {
		return nil, device.NewCodeError(device.CodeDeviceBusy, errors.New("busy"))
	})

	svc := newService(
		device.Device{ID: "ok", Name: "OK", Type: "t", Capabilities: []*device.Capability{ok}},
		device.Device{ID: "bad", Name: "Bad", Type: "t", Capabilities: []*device.Capability{failing}},
	)

	turnOn := []CapabilityAction{{Type: device.CapabilityOnOff, State: device.State{Instance: "on", Value: true}}}
	results, err := svc.Action(context.Background(), "alice", []ActionRequest{
		{ID: "bad", Capabilities: turnOn},
		{ID: "ghost", Capabilities: turnOn},
		{ID: "ok", Capabilities: turnOn},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, ActionDeviceResult{
		ID:           "bad",
		ActionResult: &device.ActionResult{Status: device.StatusError, ErrorCode: device.CodeDeviceBusy},
	}, results[0])

	assert.Equal(t, "ok", results[1].ID)
	assert.False(t, results[1].Failed())
	assert.Equal(t, []CapabilityResult{{
		Type:  device.CapabilityOnOff,
		State: ActionState{Instance: "on", ActionResult: device.ActionResult{Status: device.StatusDone}},
	}}, results[1].Capabilities)
	assert.Equal(t, true, applied.Load())
}

func TestAction_OutcomeInstanceFallback(t *testing.T) {
	c := onOff(t, nil, func(context.Context, device.State) (*device.ActionOutcome, error) {
		return &device.ActionOutcome{ActionResult: device.ActionResult{Status: device.StatusDone}}, nil
	})
	svc := newService(device.Device{Name: "Lamp", Type: "t", Capabilities: []*device.Capability{c}})

	results, err := svc.Action(context.Background(), "alice", []ActionRequest{{
		ID:           "1",
		Capabilities: []CapabilityAction{{Type: device.CapabilityOnOff, State: device.State{Instance: "on", Value: false}}},
	}})
	require.NoError(t, err)
	require.Len(t, results[0].Capabilities, 1)
	assert.Equal(t, "on", results[0].Capabilities[0].State.Instance)
}

func TestDeviceState_MarshalJSON(t *testing.T) {
	ok, err := json.Marshal(DeviceState{ID: "1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","capabilities":[],"properties":[]}`, string(ok))

	failed, err := json.Marshal(DeviceState{ID: "2", ErrorCode: device.CodeDeviceUnreachable})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"2","error_code":"DEVICE_UNREACHABLE"}`, string(failed))
}

func TestActionDeviceResult_MarshalJSON(t *testing.T) {
	failed, err := json.Marshal(ActionDeviceResult{
		ID:           "1",
		ActionResult: &device.ActionResult{Status: device.StatusError, ErrorCode: device.CodeInternalError},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","action_result":{"status":"ERROR","error_code":"INTERNAL_ERROR"}}`, string(failed))

	empty, err := json.Marshal(ActionDeviceResult{ID: "1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","capabilities":[]}`, string(empty))
}
