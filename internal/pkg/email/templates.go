package email

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: Georgia, 'Times New Roman', serif;
            background-color: #f6f3ee;
            color: #2b2b2b;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #ffffff;
            border-radius: 10px;
            padding: 32px;
            border: 1px solid #e6dfd3;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 26px;
            color: #8a6d3b;
            margin: 0;
        }
        h2 {
            font-size: 22px;
            margin: 0 0 16px;
        }
        p {
            color: #555555;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .btn {
            display: inline-block;
            background: #8a6d3b;
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 6px;
            font-weight: 600;
            margin: 16px 0;
        }
        .info-box {
            background: #faf7f2;
            border-radius: 6px;
            padding: 16px;
            margin: 16px 0;
        }
        .footer {
            text-align: center;
            margin-top: 32px;
            color: #999999;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo">
                <h1>{{.HotelName}}</h1>
            </div>
            {{.Content}}
        </div>
        <div class="footer">
            <p>You received this email because of an account or booking at {{.HotelName}}.</p>
        </div>
    </div>
</body>
</html>
`

// MagicLinkTemplate - passwordless sign-in link
const MagicLinkTemplate = `
<h2>Your sign-in link</h2>
<p>Hello {{.Name}},</p>
<p>Click the button below to sign in. The link expires in {{.ExpiresIn}} and can be used from this browser only once.</p>
<a href="{{.Link}}" class="btn">Sign in</a>
<p style="color: #999;">If you did not ask for this link you can ignore this email.</p>
`

// BookingConfirmedTemplate - sent after a reservation is committed
const BookingConfirmedTemplate = `
<h2>Your stay is confirmed</h2>
<p>Dear {{.GuestName}}, thank you for booking with us.</p>
<div class="info-box">
    <p><strong>Reservation:</strong> {{.Reference}}</p>
    <p><strong>Room:</strong> {{.RoomNumber}} ({{.RoomType}})</p>
    <p><strong>Check-in:</strong> {{.CheckIn}}</p>
    <p><strong>Check-out:</strong> {{.CheckOut}}</p>
    <p><strong>Total:</strong> {{.Nights}} night(s), ${{printf "%.2f" .TotalPrice}}</p>
</div>
<p>Free cancellation is available until {{.CancelBy}}.</p>
<a href="{{.BookingsURL}}" class="btn">View my bookings</a>
`

// BookingCanceledTemplate - sent after a guest cancels
const BookingCanceledTemplate = `
<h2>Your booking was canceled</h2>
<p>Dear {{.GuestName}},</p>
<div class="info-box">
    <p><strong>Reservation:</strong> {{.Reference}}</p>
    <p><strong>Room:</strong> {{.RoomNumber}} ({{.RoomType}})</p>
    <p><strong>Dates:</strong> {{.CheckIn}} to {{.CheckOut}}</p>
</div>
<p>We hope to welcome you another time.</p>
<a href="{{.BookingsURL}}" class="btn">Book again</a>
`

// BookingCompletedTemplate - sent at checkout
const BookingCompletedTemplate = `
<h2>Thank you for staying with us</h2>
<p>Dear {{.GuestName}}, we hope you enjoyed room {{.RoomNumber}}.</p>
<div class="info-box">
    <p><strong>Reservation:</strong> {{.Reference}}</p>
    <p><strong>Total charged:</strong> ${{printf "%.2f" .TotalPrice}}</p>
</div>
<a href="{{.BookingsURL}}" class="btn">View invoice</a>
`
