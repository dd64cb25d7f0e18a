package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (hotel_id, city, name, address, rating, price_per_night, amenities,
   distance_from_center_km, available_rooms, images, description)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name                    = VALUES(name),
  address                 = VALUES(address),
  rating                  = VALUES(rating),
  price_per_night         = VALUES(price_per_night),
  amenities               = VALUES(amenities),
  distance_from_center_km = VALUES(distance_from_center_km),
  available_rooms         = VALUES(available_rooms),
  images                  = VALUES(images),
  description             = VALUES(description)
`

const hotelColumns = `
  hotel_id, city, name, address, rating, price_per_night, amenities,
  distance_from_center_km, available_rooms, images, description`

// Point lookup by partition (city); served by idx_hotels_city.
const hotelsByCitySQL = `SELECT` + hotelColumns + `
FROM hotels
WHERE city = ?
ORDER BY hotel_id`

// Full catalog scan.
const allHotelsSQL = `SELECT` + hotelColumns + `
FROM hotels
ORDER BY city, hotel_id`

// Plain INSERT: the primary key (booking_id, guest_email) is the existence guard.
const insertReservationSQL = `
INSERT INTO reservations
  (booking_id, guest_email, hotel_id, city, hotel_name, check_in_date, check_out_date,
   nights, rooms_booked, price_per_night, total_price, status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const reservationColumns = `
  booking_id, guest_email, hotel_id, city, hotel_name, check_in_date, check_out_date,
  nights, rooms_booked, price_per_night, total_price, status, created_at, updated_at`

// Newest first via idx_reservations_guest (guest_email, status, created_at).
const reservationsByGuestSQL = `SELECT` + reservationColumns + `
FROM reservations
WHERE guest_email = ?`

const reservationsByGuestOrder = `
ORDER BY created_at DESC, booking_id DESC`

const reservationExistsSQL = `
SELECT 1 FROM reservations WHERE booking_id = ? AND guest_email = ?`
