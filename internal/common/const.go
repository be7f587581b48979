package common

const (
	RolePrompt = "You are an experienced agronomist helping small farmers in India. Answer briefly and practically about crops, soil, weather, plant diseases, irrigation, fertilizers, harvest and mandi prices. Reply in the language the farmer uses."

	// DateLayout yyyy-mm-dd
	DateLayout = "2006-01-02"

	DefaultLanguage = "en"
)

var HunyuanModel = "hunyuan-turbos-latest"
var HunyuanBaseUrl = "https://api.hunyuan.cloud.tencent.com/v1"
var HunyuanEndpoint = "hunyuan.tencentcloudapi.com"
