package service

import "errors"

// 对外错误分类，由路由层统一映射到 HTTP 状态码
var (
	// ErrInvalidRequest 缺少/非法的标识或请求体
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSessionNotFound 支付网关不认识该 session id
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrUpstreamUnavailable 支付网关不可达
	ErrUpstreamUnavailable = errors.New("payment provider unavailable")
	// ErrNotFound 没有匹配的记录
	ErrNotFound = errors.New("record not found")
)
