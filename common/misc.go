package common

import (
	"os"
)

const serviceName = "sunflow"

var serviceInstance = ""

func GetServiceName() string {
	return serviceName
}

// GetServiceInstance returns the hostname based identity of this instance.
func GetServiceInstance() string {
	if serviceInstance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serviceInstance = hostname
	}
	return serviceInstance
}
