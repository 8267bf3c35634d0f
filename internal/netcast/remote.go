// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package netcast

import (
	"fmt"

	"github.com/wokar/lgnetcast/internal"
	"github.com/wokar/lgnetcast/internal/device"
)

// NetCastRemote implements the Device interface for LG NetCast TVs
type NetCastRemote struct {
	client *Client
	info   device.DeviceInfo
	test   bool
}

// NewNetCastRemote creates a new NetCastRemote device
func NewNetCastRemote(address string, pairingKey string, protocol Protocol, options *internal.FnModeOptions) *NetCastRemote {
	if options == nil {
		options = internal.NewModeOptions()
	}
	client := NewClient(address, pairingKey, protocol, options)

	return &NetCastRemote{
		client: client,
		test:   options.Test,
		info: device.DeviceInfo{
			Type:    "netcast_tv",
			Model:   "LG NetCast",
			Address: address,
			Capabilities: []string{
				"remote_control",
				"channel_control",
				"status_query",
			},
		},
	}
}

// GetDeviceInfo returns information about this NetCast device
func (r *NetCastRemote) GetDeviceInfo() device.DeviceInfo {
	return r.info
}

// Pair establishes a session with the TV. In test mode it succeeds
// without touching the network.
func (r *NetCastRemote) Pair() error {
	if r.test {
		return nil
	}
	return r.client.Open()
}

// RequestPairingKey asks the TV to display its pairing key on screen.
func (r *NetCastRemote) RequestPairingKey() error {
	if r.test {
		return nil
	}
	return r.client.DisplayPairingKey()
}

// Close releases the underlying client session.
func (r *NetCastRemote) Close() error {
	return r.client.Close()
}

// Process handles JSON action requests and routes them to appropriate methods
func (r *NetCastRemote) Process(actionJSON []byte) (*device.ActionResponse, error) {
	// Parse the action request
	request, err := device.ParseActionRequest(actionJSON)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	// Route based on action type
	switch request.Type {
	case device.ActionTypeRemote:
		return r.processRemoteAction(request)
	case device.ActionTypeQuery:
		return r.processQueryAction(request)
	default:
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported action type: %s", request.Type),
		}, nil
	}
}

// processRemoteAction handles remote control actions
func (r *NetCastRemote) processRemoteAction(request *device.ActionRequest) (*device.ActionResponse, error) {
	// Look up the corresponding key code
	command, exists := remoteActionMap[device.RemoteAction(request.Action)]
	if !exists {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported remote action: %s", request.Action),
		}, nil
	}

	if r.test {
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("Test mode: remote action '%s' simulated", request.Action),
		}, nil
	}

	if err := r.ensureSession(); err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	// Execute the key press
	if err := r.client.SendCommand(command); err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("remote request failed: %v", err),
		}, nil
	}

	return &device.ActionResponse{
		Success: true,
		Data:    fmt.Sprintf("Remote action '%s' executed successfully", request.Action),
	}, nil
}

// processQueryAction handles status query actions
func (r *NetCastRemote) processQueryAction(request *device.ActionRequest) (*device.ActionResponse, error) {
	// Look up the corresponding data target
	query, exists := queryActionMap[device.QueryAction(request.Action)]
	if !exists {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("unsupported query action: %s", request.Action),
		}, nil
	}

	if r.test {
		return &device.ActionResponse{
			Success: true,
			Data:    fmt.Sprintf("Test mode: query '%s' simulated", request.Action),
		}, nil
	}

	if err := r.ensureSession(); err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	// Execute the query
	elements, err := r.client.QueryData(query)
	if err != nil {
		return &device.ActionResponse{
			Success: false,
			Error:   fmt.Sprintf("query request failed: %v", err),
		}, nil
	}

	results := make([]string, 0, len(elements))
	for _, element := range elements {
		results = append(results, element.String())
	}

	return &device.ActionResponse{
		Success: true,
		Data:    results,
	}, nil
}

// ensureSession pairs with the TV on first use.
func (r *NetCastRemote) ensureSession() error {
	if r.client.Paired() {
		return nil
	}
	return r.client.Open()
}

// remoteActionMap maps RemoteAction to NetCast key codes
var remoteActionMap = map[device.RemoteAction]Command{
	device.RemoteActionPower:        Power,
	device.RemoteActionVolumeUp:     VolumeUp,
	device.RemoteActionVolumeDown:   VolumeDown,
	device.RemoteActionMute:         MuteToggle,
	device.RemoteActionChannelUp:    ChannelUp,
	device.RemoteActionChannelDown:  ChannelDown,
	device.RemoteActionUp:           Up,
	device.RemoteActionDown:         Down,
	device.RemoteActionLeft:         Left,
	device.RemoteActionRight:        Right,
	device.RemoteActionConfirm:      OK,
	device.RemoteActionHome:         HomeMenu,
	device.RemoteActionBack:         Back,
	device.RemoteActionExit:         Exit,
	device.RemoteActionInput:        ExternalInput,
	device.RemoteActionNum0:         Num0,
	device.RemoteActionNum1:         Num1,
	device.RemoteActionNum2:         Num2,
	device.RemoteActionNum3:         Num3,
	device.RemoteActionNum4:         Num4,
	device.RemoteActionNum5:         Num5,
	device.RemoteActionNum6:         Num6,
	device.RemoteActionNum7:         Num7,
	device.RemoteActionNum8:         Num8,
	device.RemoteActionNum9:         Num9,
	device.RemoteActionRed:          Red,
	device.RemoteActionGreen:        Green,
	device.RemoteActionYellow:       Yellow,
	device.RemoteActionBlue:         Blue,
	device.RemoteActionPlay:         Play,
	device.RemoteActionPause:        Pause,
	device.RemoteActionStop:         Stop,
	device.RemoteActionFastForward:  FastForward,
	device.RemoteActionRewind:       Rewind,
	device.RemoteActionRecord:       Record,
	device.RemoteActionLiveTV:       LiveTV,
	device.RemoteActionEPG:          EPG,
	device.RemoteActionInfo:         ProgramInformation,
	device.RemoteActionAspectRatio:  AspectRatio,
	device.RemoteActionSubtitle:     ShowSubtitle,
	device.RemoteActionProgramList:  ProgramList,
	device.RemoteActionQuickMenu:    QuickMenu,
	device.RemoteActionPrevChannel:  PreviousChannel,
	device.RemoteActionFavChannel:   FavoriteChannel,
	device.RemoteActionEnergySaving: EnergySaving,
	device.RemoteAction3D:           Video3D,
	device.RemoteActionApps:         MyApps,
}

// queryActionMap maps QueryAction to NetCast data targets
var queryActionMap = map[device.QueryAction]Query{
	device.QueryActionVolumeInfo:  QueryVolumeInfo,
	device.QueryActionChannelInfo: QueryCurrentChannel,
	device.QueryActionChannelList: QueryChannelList,
	device.QueryActionContextUI:   QueryContextUI,
	device.QueryActionIs3D:        Query3D,
	device.QueryActionScreenImage: QueryScreenImage,
}

// CommandForAction resolves a remote action name to its key code.
func CommandForAction(action device.RemoteAction) (Command, bool) {
	command, exists := remoteActionMap[action]
	return command, exists
}

// QueryForAction resolves a query action name to its data target.
func QueryForAction(action device.QueryAction) (Query, bool) {
	query, exists := queryActionMap[action]
	return query, exists
}
