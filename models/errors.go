package models

import "errors"

// 跨包共用的错误类型，调用方用 errors.Is 判断
var (
	// ErrDataUnavailable 城市数据集缺失、无法读取或缺列
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrUnknownCity 问题中没有识别出支持的城市
	ErrUnknownCity = errors.New("unknown city")
	// ErrServiceUnavailable 文本生成服务或数据库调用失败/超时
	ErrServiceUnavailable = errors.New("service unavailable")
)
