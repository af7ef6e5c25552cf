package dto

// RegisterDomainRequest 注册域名请求
type RegisterDomainRequest struct {
	DomainName string `json:"domain_name" binding:"required,fqdn,max=255"`
	SSL        bool   `json:"ssl"` // 同步申请DNS校验的SSL证书

	UserID int64 `json:"-"`
}

// RegisterDomainResponse 注册域名响应
type RegisterDomainResponse struct {
	DomainName     string `json:"domain_name"`
	HostedZoneID   string `json:"hosted_zone_id"`
	CertificateARN string `json:"certificate_arn,omitempty"`
}

// DomainStatusResponse 域名状态响应
type DomainStatusResponse struct {
	DomainName   string `json:"domain_name"`
	HostedZoneID string `json:"hosted_zone_id"`
	Registered   bool   `json:"registered"`
	SSLEnabled   bool   `json:"ssl_enabled"`
}

// ConfigureDNSRequest DNS配置请求
type ConfigureDNSRequest struct {
	HostedZoneID string `json:"hosted_zone_id" binding:"required"`
	DomainName   string `json:"domain_name" binding:"required,fqdn"`
	Target       string `json:"target" binding:"required"`
}
