package xerr

import "fmt"

// 基础设施错误码 (业务域错误走 internal/pool/domain 的闭集枚举)
const (
	OK                 = 200
	ServerCommonError  = 500
	RequestParamsError = 400
	DbError            = 501
	CacheError         = 502
	RecordNotFound     = 404
)

type CodeError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

// IsInfra 判断是不是基础设施错误 (可以安全重试的那一类)
func IsInfra(err error) bool {
	ce, ok := err.(*CodeError)
	if !ok {
		return false
	}
	return ce.Code == DbError || ce.Code == CacheError || ce.Code == ServerCommonError
}

func MapErrMsg(code int) string {
	switch code {
	case ServerCommonError:
		return "服务器开小差了"
	case RequestParamsError:
		return "参数错误"
	case DbError:
		return "数据库繁忙"
	case CacheError:
		return "缓存繁忙"
	case RecordNotFound:
		return "记录不存在"
	default:
		return "未知错误"
	}
}
