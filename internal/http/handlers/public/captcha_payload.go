package public

import (
	handlershared "github.com/tavolo-next/internal/http/handlers/shared"
	"github.com/tavolo-next/internal/service"
)

// CaptchaPayloadRequest 验证码请求载荷
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest

func toCaptchaPayload(r CaptchaPayloadRequest) service.CaptchaVerifyPayload {
	return r.ToServicePayload()
}
