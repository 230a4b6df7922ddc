package common

import "context"

type deviceId struct{}

func AttachDeviceID(c context.Context, id string) context.Context {
	return context.WithValue(c, deviceId{}, id)
}

func DeviceIDFromContext(c context.Context) string {
	id, ok := c.Value(deviceId{}).(string)
	if !ok {
		return ""
	}
	return id
}
