package service

// API endpoint paths under the configured base URL.
const (
	PathLogin          = "/api/authentication/login"
	PathRegister       = "/api/authentication/register"
	PathLogout         = "/api/authentication/logout"
	PathRefresh        = "/api/authentication/refresh"
	PathConfirmation   = "/api/authentication/confirmation"
	PathForgotPassword = "/api/authentication/forget-password"
	PathResetPassword  = "/api/authentication/reset-password"

	PathProfile = "/api/user/me"
	PathUser    = "/api/user"

	PathTour               = "/api/tour"
	PathODataTour          = "/odata/tour"
	PathTourSchedule       = "/api/tour/schedule"
	PathTourScheduleTicket = "/api/tour/scheduleticket"
	PathRating             = "/api/tour/rating"
	PathFeedback           = "/api/tour/feedback"

	PathOrder   = "/api/order"
	PathPayment = "/api/payment"

	PathWallet         = "/api/wallet"
	PathWalletOTP      = "/api/wallet/otp"
	PathWalletWithdraw = "/api/wallet/withdraw"
	PathWalletDeposit  = "/api/wallet/deposit"

	PathVoucherOwn = "/odata/Voucher/Own()"

	PathMedia  = "/api/media"
	PathSystem = "/api/system"
)
