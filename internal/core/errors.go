package core

import "errors"

// ErrorKind classifies service errors so the API layer can resolve an HTTP
// status without inspecting messages.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindBusinessRule
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a service error carrying a kind and a user-facing (Arabic) message.
// Sentinel values are compared with errors.Is; wrap them with fmt.Errorf("%w")
// to add internal context, which never reaches the client.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// Validation errors
var (
	ErrInvalidInput        = newError(KindValidation, "البيانات المدخلة غير صالحة")
	ErrInvalidTotalLessons = newError(KindValidation, "عدد الدروس الكلي يجب أن يكون أكبر من صفر")
	ErrInvalidTimeSpent    = newError(KindValidation, "الوقت المستغرق لا يمكن أن يكون سالباً")
	ErrPlanNotFound        = newError(KindValidation, "الخطة المطلوبة غير متوفرة")
	ErrInvalidPlanType     = newError(KindValidation, "نوع الخطة غير صالح")
	ErrCannotModifySelf    = newError(KindValidation, "لا يمكنك تعديل حسابك الخاص")
)

// Authentication / authorization errors
var (
	ErrInvalidSession   = newError(KindUnauthenticated, "جلسة غير صالحة أو منتهية")
	ErrAdminOnly        = newError(KindForbidden, "هذه العملية متاحة للمشرفين فقط")
	ErrPremiumRequired  = newError(KindForbidden, "هذه الميزة متاحة للمشتركين المميزين فقط")
	ErrWebhookSignature = newError(KindValidation, "توقيع الطلب غير صالح")
)

// Not found errors
var (
	ErrUserNotFound        = newError(KindNotFound, "المستخدم غير موجود")
	ErrCourseNotFound      = newError(KindNotFound, "الدورة غير موجودة")
	ErrPlanMissing         = newError(KindNotFound, "الخطة غير موجودة")
	ErrLessonNotFound      = newError(KindNotFound, "الدرس غير موجود")
	ErrCertificateNotFound = newError(KindNotFound, "الشهادة غير موجودة")
)

// Business rule violations
var (
	ErrAlreadySubscribed        = newError(KindBusinessRule, "لديك اشتراك فعال بالفعل")
	ErrNoBillingAccount         = newError(KindBusinessRule, "لا يوجد حساب فوترة مرتبط بهذا المستخدم")
	ErrCourseNotCompleted       = newError(KindBusinessRule, "يجب إكمال جميع دروس الدورة للحصول على الشهادة")
	ErrCertificateAlreadyIssued = newError(KindBusinessRule, "تم إصدار شهادة لهذه الدورة مسبقاً")
	ErrCertificateRevoked       = newError(KindBusinessRule, "هذه الشهادة ملغاة بالفعل")
)

// Infrastructure errors with a fixed user-facing message.
var (
	ErrCheckoutFailed = newError(KindInternal, "فشل إنشاء جلسة الدفع")
	ErrPortalFailed   = newError(KindInternal, "فشل إنشاء جلسة إدارة الاشتراك")
)
