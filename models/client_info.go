package models

// ClientInfo holds what the transport layer knows about the caller of a request.
type ClientInfo struct {
	IpAddress string
	UserAgent string
}

// IpAddressOrNil returns nil for an unknown address.
func (c ClientInfo) IpAddressOrNil() *string {
	if c.IpAddress == "" || c.IpAddress == UnknownIpAddress {
		return nil
	}
	ip := c.IpAddress
	return &ip
}

func (c ClientInfo) UserAgentOrNil() *string {
	if c.UserAgent == "" {
		return nil
	}
	ua := c.UserAgent
	return &ua
}
