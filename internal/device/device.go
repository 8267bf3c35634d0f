package device

import (
	"encoding/json"
	"fmt"
)

// Device represents a generic device that can process commands
type Device interface {
	// Process handles a JSON-encoded action and executes the corresponding operation
	Process(actionJSON []byte) (*ActionResponse, error)

	// GetDeviceInfo returns basic information about the device
	GetDeviceInfo() DeviceInfo
}

// DeviceInfo contains basic information about a device
type DeviceInfo struct {
	Type         string   `json:"type"`
	Model        string   `json:"model"`
	Address      string   `json:"address"`
	Capabilities []string `json:"capabilities"`
}

// ActionType represents the type of action to perform
type ActionType string

const (
	ActionTypeRemote ActionType = "remote"
	ActionTypeQuery  ActionType = "query"
)

// ActionRequest represents a JSON action request
type ActionRequest struct {
	Type       ActionType             `json:"type"`       // "remote" or "query"
	Action     string                 `json:"action"`     // specific action name
	Parameters map[string]interface{} `json:"parameters"` // optional parameters
}

// ActionResponse represents the response from processing an action
type ActionResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RemoteAction represents available remote control actions
type RemoteAction string

const (
	RemoteActionPower        RemoteAction = "power"
	RemoteActionVolumeUp     RemoteAction = "volume_up"
	RemoteActionVolumeDown   RemoteAction = "volume_down"
	RemoteActionMute         RemoteAction = "mute"
	RemoteActionChannelUp    RemoteAction = "channel_up"
	RemoteActionChannelDown  RemoteAction = "channel_down"
	RemoteActionUp           RemoteAction = "up"
	RemoteActionDown         RemoteAction = "down"
	RemoteActionLeft         RemoteAction = "left"
	RemoteActionRight        RemoteAction = "right"
	RemoteActionConfirm      RemoteAction = "confirm"
	RemoteActionHome         RemoteAction = "home"
	RemoteActionBack         RemoteAction = "back"
	RemoteActionExit         RemoteAction = "exit"
	RemoteActionInput        RemoteAction = "input"
	RemoteActionNum0         RemoteAction = "num_0"
	RemoteActionNum1         RemoteAction = "num_1"
	RemoteActionNum2         RemoteAction = "num_2"
	RemoteActionNum3         RemoteAction = "num_3"
	RemoteActionNum4         RemoteAction = "num_4"
	RemoteActionNum5         RemoteAction = "num_5"
	RemoteActionNum6         RemoteAction = "num_6"
	RemoteActionNum7         RemoteAction = "num_7"
	RemoteActionNum8         RemoteAction = "num_8"
	RemoteActionNum9         RemoteAction = "num_9"
	RemoteActionRed          RemoteAction = "red"
	RemoteActionGreen        RemoteAction = "green"
	RemoteActionYellow       RemoteAction = "yellow"
	RemoteActionBlue         RemoteAction = "blue"
	RemoteActionPlay         RemoteAction = "play"
	RemoteActionPause        RemoteAction = "pause"
	RemoteActionStop         RemoteAction = "stop"
	RemoteActionFastForward  RemoteAction = "fast_forward"
	RemoteActionRewind       RemoteAction = "rewind"
	RemoteActionRecord       RemoteAction = "record"
	RemoteActionLiveTV       RemoteAction = "live_tv"
	RemoteActionEPG          RemoteAction = "epg"
	RemoteActionInfo         RemoteAction = "info"
	RemoteActionAspectRatio  RemoteAction = "aspect_ratio"
	RemoteActionSubtitle     RemoteAction = "subtitle"
	RemoteActionProgramList  RemoteAction = "program_list"
	RemoteActionQuickMenu    RemoteAction = "quick_menu"
	RemoteActionPrevChannel  RemoteAction = "previous_channel"
	RemoteActionFavChannel   RemoteAction = "favorite_channel"
	RemoteActionEnergySaving RemoteAction = "energy_saving"
	RemoteAction3D           RemoteAction = "3d"
	RemoteActionApps         RemoteAction = "apps"
)

// QueryAction represents available status query actions
type QueryAction string

const (
	QueryActionVolumeInfo  QueryAction = "volume_info"
	QueryActionChannelInfo QueryAction = "channel_info"
	QueryActionChannelList QueryAction = "channel_list"
	QueryActionContextUI   QueryAction = "context_ui"
	QueryActionIs3D        QueryAction = "is_3d"
	QueryActionScreenImage QueryAction = "screen_image"
)

// RemoteActions lists every remote action in presentation order.
var RemoteActions = []RemoteAction{
	RemoteActionPower,
	RemoteActionVolumeUp,
	RemoteActionVolumeDown,
	RemoteActionMute,
	RemoteActionChannelUp,
	RemoteActionChannelDown,
	RemoteActionUp,
	RemoteActionDown,
	RemoteActionLeft,
	RemoteActionRight,
	RemoteActionConfirm,
	RemoteActionHome,
	RemoteActionBack,
	RemoteActionExit,
	RemoteActionInput,
	RemoteActionNum0,
	RemoteActionNum1,
	RemoteActionNum2,
	RemoteActionNum3,
	RemoteActionNum4,
	RemoteActionNum5,
	RemoteActionNum6,
	RemoteActionNum7,
	RemoteActionNum8,
	RemoteActionNum9,
	RemoteActionRed,
	RemoteActionGreen,
	RemoteActionYellow,
	RemoteActionBlue,
	RemoteActionPlay,
	RemoteActionPause,
	RemoteActionStop,
	RemoteActionFastForward,
	RemoteActionRewind,
	RemoteActionRecord,
	RemoteActionLiveTV,
	RemoteActionEPG,
	RemoteActionInfo,
	RemoteActionAspectRatio,
	RemoteActionSubtitle,
	RemoteActionProgramList,
	RemoteActionQuickMenu,
	RemoteActionPrevChannel,
	RemoteActionFavChannel,
	RemoteActionEnergySaving,
	RemoteAction3D,
	RemoteActionApps,
}

// QueryActions lists every query action in presentation order.
var QueryActions = []QueryAction{
	QueryActionVolumeInfo,
	QueryActionChannelInfo,
	QueryActionChannelList,
	QueryActionContextUI,
	QueryActionIs3D,
	QueryActionScreenImage,
}

// ParseActionRequest parses JSON input into ActionRequest
func ParseActionRequest(actionJSON []byte) (*ActionRequest, error) {
	var request ActionRequest
	if err := json.Unmarshal(actionJSON, &request); err != nil {
		return nil, fmt.Errorf("failed to parse action request: %w", err)
	}

	// Validate required fields
	if request.Type == "" {
		return nil, fmt.Errorf("action type is required")
	}

	if request.Action == "" {
		return nil, fmt.Errorf("action is required")
	}

	return &request, nil
}
