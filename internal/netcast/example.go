package netcast

import (
	"encoding/json"
	"fmt"

	"github.com/wokar/lgnetcast/internal/device"
)

// Example demonstrates how to use the Device interface and NetCastRemote
func Example() {
	// Create a new NetCast device
	tv := NewNetCastRemote("192.168.1.100", "889955", ProtocolROAP, nil)

	// Get device information
	info := tv.GetDeviceInfo()
	fmt.Printf("Device: %s %s at %s\n", info.Model, info.Type, info.Address)
	fmt.Printf("Capabilities: %v\n", info.Capabilities)

	// Example 1: Remote control action
	remoteActionJSON := `{
		"type": "remote",
		"action": "volume_up"
	}`

	response, err := tv.Process([]byte(remoteActionJSON))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if response.Success {
		fmt.Printf("Remote action successful: %v\n", response.Data)
	} else {
		fmt.Printf("Remote action failed: %s\n", response.Error)
	}

	// Example 2: Status query action
	queryActionJSON := `{
		"type": "query",
		"action": "volume_info"
	}`

	response, err = tv.Process([]byte(queryActionJSON))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if response.Success {
		fmt.Printf("Query successful: %v\n", response.Data)
	} else {
		fmt.Printf("Query failed: %s\n", response.Error)
	}

	// Example 3: Direct client use for channel changes
	client := NewClient("192.168.1.100", "889955", ProtocolROAP, nil)
	if err := client.Open(); err != nil {
		fmt.Printf("Pairing failed: %v\n", err)
		return
	}
	defer client.Close()

	channel := Channel{Major: 7, SourceIndex: 1, PhysicalNum: 25}
	if err := client.ChangeChannel(channel); err != nil {
		fmt.Printf("Channel change failed: %v\n", err)
		return
	}
	fmt.Printf("Switched to channel %s\n", channel)
}

// CreateActionJSON is a helper function to create action JSON strings
func CreateActionJSON(actionType device.ActionType, action string, parameters map[string]interface{}) ([]byte, error) {
	request := device.ActionRequest{
		Type:       actionType,
		Action:     action,
		Parameters: parameters,
	}

	return json.Marshal(request)
}
